package pipeline

import (
	"testing"

	errs "github.com/matzehuels/roadmap/pkg/errors"
	"github.com/matzehuels/roadmap/pkg/layout"
)

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"svg", false},
		{"dot", false},
		{"json", false},
		{"png", false},
		{"pdf", false},
		{"invalid", true},
		{"SVG", true}, // case-sensitive
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
		if err != nil && !errs.Is(err, errs.ErrCodeInvalidFormat) {
			t.Errorf("ValidateFormat(%q) code = %v, want %v", tt.format, errs.GetCode(err), errs.ErrCodeInvalidFormat)
		}
	}
}

func TestValidateFormats(t *testing.T) {
	if err := ValidateFormats([]string{"svg", "dot"}); err != nil {
		t.Errorf("Valid formats should pass: %v", err)
	}

	if err := ValidateFormats([]string{"svg", "invalid"}); err == nil {
		t.Error("Invalid format should fail")
	}

	// Empty slice is valid
	if err := ValidateFormats(nil); err != nil {
		t.Errorf("Empty formats should pass: %v", err)
	}
}

func TestValidateAndSetDefaults(t *testing.T) {
	var opts Options
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("ValidateAndSetDefaults() error = %v", err)
	}
	if opts.Algorithm != DefaultAlgorithm {
		t.Errorf("Algorithm = %q, want %q", opts.Algorithm, DefaultAlgorithm)
	}
	if len(opts.Formats) != 1 || opts.Formats[0] != FormatSVG {
		t.Errorf("Formats = %v, want [svg]", opts.Formats)
	}
	if opts.Layout != layout.DefaultOptions() {
		t.Errorf("Layout = %+v, want defaults", opts.Layout)
	}
	if opts.Logger == nil {
		t.Error("Logger should default to a discard logger")
	}
}

func TestValidateForLayout(t *testing.T) {
	tests := []struct {
		name     string
		opts     Options
		wantAlg  string
		wantCode errs.Code
	}{
		{"canonicalizes shorthand", Options{Algorithm: "Force"}, "force-directed", ""},
		{"layered alias", Options{Algorithm: "layered"}, "hierarchical", ""},
		{"unknown algorithm", Options{Algorithm: "spiral"}, "", errs.ErrCodeInvalidAlgorithm},
		{"negative width", Options{Layout: layout.Options{NodeWidth: -1}}, "", errs.ErrCodeInvalidInput},
		{"damping out of range", Options{Layout: layout.Options{Damping: 1}}, "", errs.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := tt.opts
			err := opts.ValidateForLayout()
			if tt.wantCode != "" {
				if got := errs.GetCode(err); got != tt.wantCode {
					t.Errorf("ValidateForLayout() code = %v, want %v (err %v)", got, tt.wantCode, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ValidateForLayout() error = %v", err)
			}
			if opts.Algorithm != tt.wantAlg {
				t.Errorf("Algorithm = %q, want %q", opts.Algorithm, tt.wantAlg)
			}
		})
	}
}

func TestKeyOpts(t *testing.T) {
	opts := Options{Algorithm: "hierarchical", Detailed: true}
	opts.SetLayoutDefaults()

	lk := opts.LayoutKeyOpts()
	if lk.Algorithm != "hierarchical" || lk.Options != opts.Layout {
		t.Errorf("LayoutKeyOpts() = %+v", lk)
	}
	ak := opts.ArtifactKeyOpts("dot")
	if ak.Format != "dot" || !ak.Detailed {
		t.Errorf("ArtifactKeyOpts() = %+v", ak)
	}
}
