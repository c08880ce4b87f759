package htmlsanitize_test

import (
	"testing"

	"github.com/dalemusser/ejchub/internal/app/system/htmlsanitize"
)

func TestPlainText_Empty(t *testing.T) {
	if got := htmlsanitize.PlainText(""); got != "" {
		t.Errorf("expected empty string, got %q", got)
	}
}

func TestPlainText_Unchanged(t *testing.T) {
	in := "Alergia a camarão, usa óculos"
	if got := htmlsanitize.PlainText(in); got != in {
		t.Errorf("expected %q, got %q", in, got)
	}
}

func TestPlainText_KeepsAmpersand(t *testing.T) {
	in := "João & Maria"
	if got := htmlsanitize.PlainText(in); got != in {
		t.Errorf("expected %q, got %q", in, got)
	}
}

func TestPlainText_StripsTags(t *testing.T) {
	got := htmlsanitize.PlainText("<b>Asma</b> leve")
	if got != "Asma leve" {
		t.Errorf("expected tags removed, got %q", got)
	}
}

func TestPlainText_DropsScript(t *testing.T) {
	got := htmlsanitize.PlainText("ok<script>alert('x')</script>")
	if got != "ok" {
		t.Errorf("expected script removed, got %q", got)
	}
}
