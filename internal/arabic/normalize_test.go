package arabic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize_LetterUnification(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"hamza above alef", "أنظمة", "انظمة"},
		{"hamza below alef", "إجراء", "اجراء"},
		{"alef madda", "آلية", "الية"},
		{"alef maksura", "مستوى", "مستوي"},
		{"waw hamza", "مسؤولية", "مسوولية"},
		{"yaa hamza", "هيئة", "هيية"},
		{"tatweel removed", "تــرخيص", "ترخيص"},
		{"arabic punctuation", "هل؟ نعم، لا؛", "هل? نعم, لا;"},
		{"empty", "", ""},
		{"ascii passthrough", "license 42", "license 42"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.input))
		})
	}
}

func TestNormalize_StripsDiacritics(t *testing.T) {
	// ترخيص with fatha/damma marks interleaved
	marked := "تَرْخِيصٌ"
	assert.Equal(t, "ترخيص", Normalize(marked))
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{
		"أحكام المسؤولية المدنية عن الأضرار النووية",
		"المادة ١٢ من اللائحة",
		"Nuclear Regulatory Commission - مقيد",
		"تَشْغِيل المنشأة",
		"",
	}
	for _, s := range inputs {
		once := Normalize(s)
		require.Equal(t, once, Normalize(once), "normalize must be idempotent for %q", s)
	}
}

func TestToASCIIDigits(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"arabic-indic", "٠١٢٣٤٥٦٧٨٩", "0123456789"},
		{"extended", "۰۱۲۳۴۵۶۷۸۹", "0123456789"},
		{"mixed with text", "المادة ٢٤ صفحة ۷", "المادة 24 صفحة 7"},
		{"ascii untouched", "article 24", "article 24"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ToASCIIDigits(tt.input))
		})
	}
}

func TestTokenize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"simple", "ترخيص المنشأة", []string{"ترخيص", "المنشاة"}},
		{"digits folded", "المادة ١٢", []string{"المادة", "12"}},
		{"punctuation separates", "الترخيص، والرقابة؛ والتعويض", []string{"الترخيص", "والرقابة", "والتعويض"}},
		{"latin kept", "obligations اتفاقية", []string{"obligations", "اتفاقية"}},
		{"latin lowercased", "Restricted Protocol", []string{"restricted", "protocol"}},
		{"latin only", "IAEA safeguards", []string{"iaea", "safeguards"}},
		{"empty", "", nil},
		{"only punctuation", "؟!،", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Tokenize(tt.input))
		})
	}
}

func TestTokenize_NormalizedInputStable(t *testing.T) {
	s := "إصدار التراخيص للمنشآت النووية"
	require.Equal(t, Tokenize(s), Tokenize(Normalize(s)))
}
