package langdetect

import (
	"strings"
	"testing"
)

func TestDetectEmptyInput(t *testing.T) {
	d := NewDetector()

	for _, input := range []string{"", "   ", "\n\t  \n", "123 456 !!!"} {
		got := d.Detect(input)
		if got.Language != "other" {
			t.Errorf("Detect(%q).Language = %q, want \"other\"", input, got.Language)
		}
		if got.Confidence != 0 {
			t.Errorf("Detect(%q).Confidence = %v, want 0", input, got.Confidence)
		}
	}
}

func TestDetectCJK(t *testing.T) {
	d := NewDetector()

	cases := []struct {
		name string
		text string
		lang string
	}{
		{"japanese kana", "これは日本語のテストです。とても面白い記事だと思います。", "ja"},
		{"japanese han with kana", "日本語の文章は漢字とひらがなを混ぜて書きます。", "ja"},
		{"chinese", "这是一篇关于分布式系统设计的技术文章,内容非常深入。", "zh"},
		{"korean", "이것은 한국어로 작성된 기술 문서입니다. 매우 유용합니다.", "ko"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := d.Detect(c.text)
			if got.Language != c.lang {
				t.Errorf("Detect() language = %q, want %q", got.Language, c.lang)
			}
			if got.Confidence <= 0.3 {
				t.Errorf("Expected confident CJK detection, got %v", got.Confidence)
			}
		})
	}
}

func TestDetectJapaneseMixedScriptConfidence(t *testing.T) {
	d := NewDetector()

	// Kanji-heavy Japanese is the normal case; mixing in kanji must not
	// erode confidence relative to kana-only text.
	mixed := d.Detect("日本語の文章は漢字とひらがなを混ぜて書きます。技術記事も同様です。")
	kanaOnly := d.Detect("これはひらがなとカタカナだけでかかれたテストのぶんしょうです。")

	if mixed.Language != "ja" {
		t.Fatalf("Detect() language = %q, want ja", mixed.Language)
	}
	if mixed.Confidence < kanaOnly.Confidence-0.05 {
		t.Errorf("Mixed-script confidence %v dropped below kana-only %v", mixed.Confidence, kanaOnly.Confidence)
	}
	if mixed.Confidence <= 0.5 {
		t.Errorf("Expected confident detection for mixed Japanese, got %v", mixed.Confidence)
	}
}

func TestDetectCyrillicAndArabic(t *testing.T) {
	d := NewDetector()

	if got := d.Detect("Это статья о распределённых системах и их проектировании."); got.Language != "ru" {
		t.Errorf("Expected ru, got %q", got.Language)
	}
	if got := d.Detect("هذه مقالة تقنية حول تصميم الأنظمة الموزعة والبرمجة."); got.Language != "ar" {
		t.Errorf("Expected ar, got %q", got.Language)
	}
}

func TestDetectLatinDisambiguation(t *testing.T) {
	d := NewDetector()

	cases := []struct {
		name string
		text string
		lang string
	}{
		{"english", "The design of the system is based on the idea that every component is independent and that the failure of one part does not bring down the rest.", "en"},
		{"spanish", "El diseño de los sistemas distribuidos depende de que los componentes sean independientes y que una falla no afecte el resto de la red.", "es"},
		{"french", "La conception des systèmes répartis repose sur le fait que les composants sont indépendants et que la panne est isolée dans une partie du réseau.", "fr"},
		{"german", "Der Entwurf der verteilten Systeme ist so gestaltet, dass die Komponenten nicht voneinander abhängen und ein Ausfall nicht das ganze System betrifft.", "de"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := d.Detect(c.text)
			if got.Language != c.lang {
				t.Errorf("Detect() language = %q, want %q", got.Language, c.lang)
			}
			if got.Script != ScriptLatin {
				t.Errorf("Detect() script = %q, want %q", got.Script, ScriptLatin)
			}
		})
	}
}

func TestDetectConfidenceGrowsWithLength(t *testing.T) {
	d := NewDetector()

	short := d.Detect("The cat sat.")
	long := d.Detect(strings.Repeat("The quick brown fox jumps over the lazy dog and the cat sat on the mat. ", 5))

	if long.Confidence <= short.Confidence {
		t.Errorf("Expected confidence to grow with length: short %v, long %v", short.Confidence, long.Confidence)
	}
	if long.Confidence > 1 {
		t.Errorf("Confidence out of bounds: %v", long.Confidence)
	}
}

func TestQuickDetect(t *testing.T) {
	d := NewDetector()

	cases := []struct {
		text string
		want string
	}{
		{"これはテスト", "ja"},
		{"한국어 문서", "ko"},
		{"分布式系统", "zh"},
		{"Привет мир", "ru"},
		{"مرحبا بالعالم", "ar"},
		{"Hello world", "en"},
		{"", "en"},
	}
	for _, c := range cases {
		if got := d.QuickDetect(c.text); got != c.want {
			t.Errorf("QuickDetect(%q) = %q, want %q", c.text, got, c.want)
		}
	}
}
