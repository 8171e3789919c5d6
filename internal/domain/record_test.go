package domain_test

import (
	"testing"

	"github.com/jmpinto/eventos-escuteiros/internal/domain"
)

func TestRecordLinks_NormalizesScalarAndList(t *testing.T) {
	cases := []struct {
		name  string
		value any
		want  []string
	}{
		{"scalar id", "rec1", []string{"rec1"}},
		{"json list", []any{"rec1", "rec2"}, []string{"rec1", "rec2"}},
		{"string list", []string{"rec1"}, []string{"rec1"}},
		{"empty string", "", nil},
		{"absent", nil, nil},
		{"wrong type", 42.0, nil},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := domain.Record{}
			if tc.value != nil {
				r["Evento"] = tc.value
			}
			got := r.Links("Evento")
			if len(got) != len(tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
			for i := range got {
				if got[i] != tc.want[i] {
					t.Errorf("expected %v, got %v", tc.want, got)
				}
			}
		})
	}
}

func TestRecordHasLink_TreatsScalarAndListAlike(t *testing.T) {
	scalar := domain.Record{"Evento": "rec1"}
	list := domain.Record{"Evento": []any{"rec0", "rec1"}}

	if !scalar.HasLink("Evento", "rec1") {
		t.Error("scalar link not matched")
	}
	if !list.HasLink("Evento", "rec1") {
		t.Error("list link not matched")
	}
	if scalar.HasLink("Evento", "rec2") {
		t.Error("matched an id the field does not reference")
	}
}

func TestRecordNumber_Coercion(t *testing.T) {
	r := domain.Record{
		"float":   2.5,
		"int":     3,
		"string":  "7.50",
		"garbage": "abc",
	}

	if got := r.Number("float"); got != 2.5 {
		t.Errorf("expected 2.5, got %f", got)
	}
	if got := r.Number("int"); got != 3 {
		t.Errorf("expected 3, got %f", got)
	}
	if got := r.Number("string"); got != 7.5 {
		t.Errorf("expected 7.5, got %f", got)
	}
	if got := r.Number("garbage"); got != 0 {
		t.Errorf("expected 0, got %f", got)
	}
	if got := r.Number("missing"); got != 0 {
		t.Errorf("expected 0, got %f", got)
	}
}

func TestRecordBool_AbsentReadsFalse(t *testing.T) {
	r := domain.Record{"Pago": true}

	if !r.Bool("Pago") {
		t.Error("expected true")
	}
	if r.Bool("Ativo") {
		t.Error("absent flag should read false")
	}
}
