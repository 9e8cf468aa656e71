package reconcile

import (
	"fmt"
	"reflect"
	"sync"
	"testing"

	"github.com/fundops/dealfill/internal/model"
)

func TestSession_OneDirectionalNeeds(t *testing.T) {
	s := NewSession(nil)

	s.ApplyParse([]model.FieldKey{model.FieldRoundSize, model.FieldInstrument})

	s.FieldChanged(model.FieldRoundSize, "$1,000,000")
	if s.Needs(model.FieldRoundSize) {
		t.Error("Expected filled field to leave the needs set")
	}
	if !s.Needs(model.FieldInstrument) {
		t.Error("Expected untouched field to stay in the needs set")
	}

	// Clearing the field afterwards must not re-add it.
	s.FieldChanged(model.FieldRoundSize, "")
	if s.Needs(model.FieldRoundSize) {
		t.Error("Expected cleared field to stay out of the needs set")
	}

	want := []model.FieldKey{model.FieldInstrument}
	if got := s.NeedsManualInput(); !reflect.DeepEqual(got, want) {
		t.Errorf("Expected needs %v, got %v", want, got)
	}
}

func TestSession_EmptyValueNeverRemoves(t *testing.T) {
	s := NewSession(nil)

	s.ApplyParse([]model.FieldKey{model.FieldRoundSize})

	s.FieldChanged(model.FieldRoundSize, "   ")
	if !s.Needs(model.FieldRoundSize) {
		t.Error("Expected whitespace-only edit to leave the need in place")
	}
}

func TestSession_ApplyParseReseeds(t *testing.T) {
	s := NewSession(nil)

	s.ApplyParse([]model.FieldKey{model.FieldRoundSize})
	s.FieldChanged(model.FieldRoundSize, "$500,000")
	if s.Needs(model.FieldRoundSize) {
		t.Fatal("Expected field to be removed")
	}

	// A brand-new parse is the only way back into the set.
	s.ApplyParse([]model.FieldKey{model.FieldRoundSize, model.FieldCompanyURL})

	want := []model.FieldKey{model.FieldCompanyURL, model.FieldRoundSize}
	if got := s.NeedsManualInput(); !reflect.DeepEqual(got, want) {
		t.Errorf("Expected reseeded needs %v, got %v", want, got)
	}
}

func TestSession_NeedsManualInputSorted(t *testing.T) {
	s := NewSession(nil)

	s.ApplyParse([]model.FieldKey{
		model.FieldRoundSize, model.FieldCompanyURL, model.FieldInstrument,
	})

	want := []model.FieldKey{
		model.FieldCompanyURL, model.FieldInstrument, model.FieldRoundSize,
	}
	if got := s.NeedsManualInput(); !reflect.DeepEqual(got, want) {
		t.Errorf("Expected sorted needs %v, got %v", want, got)
	}
}

func TestSession_StatusDefaultsIdle(t *testing.T) {
	s := NewSession(nil)

	if got := s.Status(model.FieldCompanyURL); got != model.StatusIdle {
		t.Errorf("Expected idle for untouched field, got %s", got)
	}
}

func TestSession_ValidationLifecycle(t *testing.T) {
	s := NewSession(nil)

	token := s.StartValidation(model.FieldCompanyURL)
	if got := s.Status(model.FieldCompanyURL); got != model.StatusValidating {
		t.Fatalf("Expected validating, got %s", got)
	}

	s.FinishValidation(model.FieldCompanyURL, token, true)
	if got := s.Status(model.FieldCompanyURL); got != model.StatusValid {
		t.Errorf("Expected valid, got %s", got)
	}

	token = s.StartValidation(model.FieldCompanyURL)
	s.FinishValidation(model.FieldCompanyURL, token, false)
	if got := s.Status(model.FieldCompanyURL); got != model.StatusInvalid {
		t.Errorf("Expected invalid, got %s", got)
	}
}

func TestSession_StaleCompletionDiscarded(t *testing.T) {
	s := NewSession(nil)

	token1 := s.StartValidation(model.FieldCompanyURL)
	token2 := s.StartValidation(model.FieldCompanyURL)
	if token1 == token2 {
		t.Fatalf("Expected distinct tokens, got %d twice", token1)
	}

	// The first check finishes late: its verdict must not land.
	s.FinishValidation(model.FieldCompanyURL, token1, true)
	if got := s.Status(model.FieldCompanyURL); got != model.StatusValidating {
		t.Errorf("Expected stale completion to be discarded, got %s", got)
	}

	s.FinishValidation(model.FieldCompanyURL, token2, false)
	if got := s.Status(model.FieldCompanyURL); got != model.StatusInvalid {
		t.Errorf("Expected latest completion to apply, got %s", got)
	}
}

func TestSession_EditStalesInFlightCheck(t *testing.T) {
	s := NewSession(nil)

	token := s.StartValidation(model.FieldCompanyURL)
	s.FieldChanged(model.FieldCompanyURL, "https://newer.example.com")

	s.FinishValidation(model.FieldCompanyURL, token, true)
	if got := s.Status(model.FieldCompanyURL); got == model.StatusValid {
		t.Error("Expected completion for superseded value to be discarded")
	}
}

func TestSession_ClearResetsStatusToIdle(t *testing.T) {
	s := NewSession(nil)

	token := s.StartValidation(model.FieldCompanyURL)
	s.FieldChanged(model.FieldCompanyURL, "")

	if got := s.Status(model.FieldCompanyURL); got != model.StatusIdle {
		t.Fatalf("Expected idle after clear, got %s", got)
	}

	s.FinishValidation(model.FieldCompanyURL, token, true)
	if got := s.Status(model.FieldCompanyURL); got != model.StatusIdle {
		t.Errorf("Expected idle to survive a stale completion, got %s", got)
	}
}

func TestSession_ProposeFoundersFirstWins(t *testing.T) {
	s := NewSession(nil)

	if s.ProposeFounders(nil) {
		t.Error("Expected empty proposal to be rejected")
	}

	first := []model.Founder{{FirstName: "Jane", LastName: "Doe", Role: model.RoleFounder}}
	if !s.ProposeFounders(first) {
		t.Fatal("Expected first non-empty proposal to be accepted")
	}

	second := []model.Founder{{FirstName: "John", LastName: "Smith", Role: model.RoleFounder}}
	if s.ProposeFounders(second) {
		t.Error("Expected later proposal to be rejected")
	}

	got := s.Founders()
	if len(got) != 1 || got[0].FirstName != "Jane" {
		t.Errorf("Expected first proposal to stick, got %v", got)
	}
}

func TestSession_ConcurrentUse(t *testing.T) {
	s := NewSession(nil)

	keys := make([]model.FieldKey, 0, 8)
	for i := 0; i < 8; i++ {
		keys = append(keys, model.FieldKey(fmt.Sprintf("field_%d", i)))
	}
	s.ApplyParse(keys)

	var wg sync.WaitGroup
	for _, key := range keys {
		wg.Add(1)
		go func(key model.FieldKey) {
			defer wg.Done()
			s.FieldChanged(key, "value")
			token := s.StartValidation(key)
			s.FinishValidation(key, token, true)
			_ = s.Status(key)
			_ = s.NeedsManualInput()
		}(key)
	}
	wg.Wait()

	if got := len(s.NeedsManualInput()); got != 0 {
		t.Errorf("Expected all needs satisfied, got %d remaining", got)
	}
	for _, key := range keys {
		if got := s.Status(key); got != model.StatusValid {
			t.Errorf("Expected %s valid, got %s", key, got)
		}
	}
}
