package detect

import (
	"testing"
)

func TestParseRegionsWrapperObject(t *testing.T) {
	out := `{"regions":[{"label":"logo","box":[10,20,110,220]}]}`
	regions, err := parseRegions(out)
	if err != nil {
		t.Fatalf("parseRegions: %v", err)
	}
	if len(regions) != 1 || regions[0].Label != "logo" {
		t.Fatalf("regions = %+v", regions)
	}
	if regions[0].Box != [4]float64{10, 20, 110, 220} {
		t.Errorf("box = %v", regions[0].Box)
	}
}

func TestParseRegionsBareArray(t *testing.T) {
	regions, err := parseRegions(`[{"label":"phone","box":[0.1,0.2,0.3,0.4]}]`)
	if err != nil {
		t.Fatalf("parseRegions: %v", err)
	}
	if len(regions) != 1 || regions[0].Label != "phone" {
		t.Fatalf("regions = %+v", regions)
	}
}

func TestParseRegionsEmptyList(t *testing.T) {
	regions, err := parseRegions(`{"regions":[]}`)
	if err != nil {
		t.Fatalf("an empty region list is a valid outcome: %v", err)
	}
	if len(regions) != 0 {
		t.Fatalf("regions = %+v", regions)
	}
}

func TestParseRegionsRejectsProse(t *testing.T) {
	if _, err := parseRegions("I could not find any sensitive regions."); err == nil {
		t.Fatalf("prose should not parse as detections")
	}
}

func TestStripCodeFences(t *testing.T) {
	tests := []struct{ in, want string }{
		{"```json\n{\"regions\":[]}\n```", `{"regions":[]}`},
		{"```\n[]\n```", "[]"},
		{`{"regions":[]}`, `{"regions":[]}`},
	}
	for _, tt := range tests {
		if got := stripCodeFences(tt.in); got != tt.want {
			t.Errorf("stripCodeFences(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestClassifySensitiveText(t *testing.T) {
	tests := []struct {
		text      string
		sensitive bool
	}{
		{"Tel: +49 (0)89 1234-5678", true},
		{"sales@example-corp.com", true},
		{"www.example-corp.com", true},
		{"深圳某某精密有限公司", true},
		{"Ra 3.2 unless otherwise stated", false},
		{"TOLERANCE ±0.05", false},
	}
	for _, tt := range tests {
		if _, got := classify(tt.text); got != tt.sensitive {
			t.Errorf("classify(%q) sensitive = %v, want %v", tt.text, got, tt.sensitive)
		}
	}
}
