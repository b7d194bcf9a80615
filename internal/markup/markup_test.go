package markup

import "testing"

func TestToHTML_ConvertsLinksBoldItalic(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "link",
			in:   "смотри [тут](http://example.com)",
			want: `смотри <a href="http://example.com">тут</a>`,
		},
		{
			name: "bold and italic",
			in:   "**жирный** и *курсив*",
			want: "<b>жирный</b> и <i>курсив</i>",
		},
		{
			name: "plain text passes through",
			in:   "обычный текст без разметки",
			want: "обычный текст без разметки",
		},
		{
			name: "unrecognized markdown passes through",
			in:   "# заголовок и `код`",
			want: "# заголовок и `код`",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ToHTML(tt.in); got != tt.want {
				t.Fatalf("ToHTML(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestToHTML_LinkResolvedBeforeBold(t *testing.T) {
	got := ToHTML("[**bold link**](http://x)")
	want := `<a href="http://x"><b>bold link</b></a>`
	if got != want {
		t.Fatalf("ToHTML = %q, want %q", got, want)
	}
}

func TestToPlain_RewritesAnchorsAndBreaks(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "anchor keeps label and url",
			in:   `пляж: <a href="http://maps.example/karon">Карон</a>`,
			want: "пляж: Карон (http://maps.example/karon)",
		},
		{
			name: "line breaks",
			in:   "a<br>b<br/>c",
			want: "a\nb\nc",
		},
		{
			name: "paragraphs become blank lines",
			in:   "<p>первый</p><p>второй</p>",
			want: "первый\n\nвторой",
		},
		{
			name: "inline tags stripped",
			in:   "<b>жирный</b> <i>курсив</i> <code>код</code>",
			want: "жирный курсив код",
		},
		{
			name: "unknown tags stripped",
			in:   "<tg-spoiler>секрет</tg-spoiler>",
			want: "секрет",
		},
		{
			name: "newline runs collapse to two",
			in:   "a\n\n\n\n\nb",
			want: "a\n\nb",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ToPlain(tt.in); got != tt.want {
				t.Fatalf("ToPlain(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestToPlain_Idempotent(t *testing.T) {
	inputs := []string{
		`<a href="http://x">label</a> и <b>жирный</b>`,
		"уже простой текст",
		"a<br>b\n\n\nc",
		"",
	}
	for _, in := range inputs {
		once := ToPlain(in)
		twice := ToPlain(once)
		if once != twice {
			t.Fatalf("ToPlain not idempotent for %q: %q vs %q", in, once, twice)
		}
	}
}

func TestStripHeaders(t *testing.T) {
	in := "# Заголовок\nтекст\n## Подзаголовок\nещё текст"
	want := "Заголовок\nтекст\nПодзаголовок\nещё текст"
	if got := StripHeaders(in); got != want {
		t.Fatalf("StripHeaders = %q, want %q", got, want)
	}
}
