package validate

import (
	"errors"
	"regexp"
	"strings"
	"testing"
)

func TestString(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		constraints StringConstraints
		wantErr     error
		wantOutput  string
	}{
		{
			name:  "valid string within length constraints",
			input: "Hello World",
			constraints: StringConstraints{
				MinLength: 5,
				MaxLength: 20,
				TrimSpace: true,
			},
			wantErr:    nil,
			wantOutput: "Hello World",
		},
		{
			name:  "string too short",
			input: "Hi",
			constraints: StringConstraints{
				MinLength: 5,
				MaxLength: 20,
			},
			wantErr: ErrStringTooShort,
		},
		{
			name:  "string too long",
			input: strings.Repeat("a", 101),
			constraints: StringConstraints{
				MinLength: 1,
				MaxLength: 100,
			},
			wantErr: ErrStringTooLong,
		},
		{
			name:  "empty string not allowed",
			input: "",
			constraints: StringConstraints{
				AllowEmpty: false,
			},
			wantErr: ErrEmpty,
		},
		{
			name:  "empty string allowed",
			input: "",
			constraints: StringConstraints{
				AllowEmpty: true,
			},
			wantErr:    nil,
			wantOutput: "",
		},
		{
			name:  "whitespace trimmed",
			input: "  Hello  ",
			constraints: StringConstraints{
				TrimSpace: true,
			},
			wantErr:    nil,
			wantOutput: "Hello",
		},
		{
			name:  "SQL keyword detected",
			input: "Hello SELECT World",
			constraints: StringConstraints{
				CheckSQLKeywords: true,
			},
			wantErr: ErrSQLKeyword,
		},
		{
			name:  "SQL keyword in lowercase",
			input: "select * from users",
			constraints: StringConstraints{
				CheckSQLKeywords: true,
			},
			wantErr: ErrSQLKeyword,
		},
		{
			name:  "no SQL keyword",
			input: "This is a normal sentence",
			constraints: StringConstraints{
				CheckSQLKeywords: true,
			},
			wantErr:    nil,
			wantOutput: "This is a normal sentence",
		},
		{
			name:  "disallowed word detected",
			input: "Hello spam world",
			constraints: StringConstraints{
				DisallowedWords: []string{"spam", "scam"},
			},
			wantErr: errors.New("disallowed word"),
		},
		{
			name:  "pattern validation success",
			input: "valid-name_123",
			constraints: StringConstraints{
				AllowedPattern: mustCompile(`^[a-zA-Z0-9_\-]+$`),
			},
			wantErr:    nil,
			wantOutput: "valid-name_123",
		},
		{
			name:  "pattern validation failure",
			input: "invalid name!",
			constraints: StringConstraints{
				AllowedPattern: mustCompile(`^[a-zA-Z0-9_\-]+$`),
			},
			wantErr: ErrInvalidCharacters,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := String(tt.input, tt.constraints)
			if tt.wantErr != nil {
				if err == nil {
					t.Errorf("String() error = nil, wantErr %v", tt.wantErr)
					return
				}
				if !errors.Is(err, tt.wantErr) && !strings.Contains(err.Error(), "disallowed word") {
					t.Errorf("String() error = %v, wantErr %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Errorf("String() unexpected error = %v", err)
				return
			}
			if got != tt.wantOutput {
				t.Errorf("String() = %q, want %q", got, tt.wantOutput)
			}
		})
	}
}

func TestSanitizeHTML(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "plain text unchanged",
			input: "Hello World",
			want:  "Hello World",
		},
		{
			name:  "script tag escaped",
			input: "<script>alert('xss')</script>",
			want:  "&lt;script&gt;alert(&#39;xss&#39;)&lt;/script&gt;",
		},
		{
			name:  "HTML entities escaped",
			input: `<div onclick="evil()">Click me</div>`,
			want:  "&lt;div onclick=&#34;evil()&#34;&gt;Click me&lt;/div&gt;",
		},
		{
			name:  "ampersand escaped",
			input: "Tom & Jerry",
			want:  "Tom &amp; Jerry",
		},
		{
			name:  "quotes escaped",
			input: `He said "hello"`,
			want:  "He said &#34;hello&#34;",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SanitizeHTML(tt.input)
			if got != tt.want {
				t.Errorf("SanitizeHTML() = %q, want %q", got, tt.want)
			}
		})
	}
}


func TestPostTitle(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{
			name:    "valid title",
			input:   "Go ile Web Servisi Yazmak",
			wantErr: false,
		},
		{
			name:    "title at max length",
			input:   strings.Repeat("a", 200),
			wantErr: false,
		},
		{
			name:    "title too long",
			input:   strings.Repeat("a", 201),
			wantErr: true,
		},
		{
			name:    "empty title",
			input:   "",
			wantErr: true,
		},
		{
			name:    "whitespace-only title",
			input:   "   ",
			wantErr: true,
		},
		{
			name:    "SQL words are legitimate in tech titles",
			input:   "SQL DELETE kullanımı",
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := PostTitle(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("PostTitle() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !tt.wantErr && got == "" {
				t.Errorf("PostTitle() returned empty string for valid input")
			}
		})
	}
}

func TestPostContent(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{
			name:    "valid post content",
			input:   "Bu yazıda Go dilinde HTTP sunucusu yazmayı anlatıyorum.",
			wantErr: false,
		},
		{
			name:    "post content at max length",
			input:   strings.Repeat("a", 50000),
			wantErr: false,
		},
		{
			name:    "post content too long",
			input:   strings.Repeat("a", 50001),
			wantErr: true,
		},
		{
			name:    "empty post content",
			input:   "",
			wantErr: true,
		},
		{
			name:    "post content with HTML",
			input:   "Check out <b>this</b> cool thing!",
			wantErr: false, // Should not error, but HTML will be escaped
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := PostContent(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("PostContent() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !tt.wantErr {
				if got == "" {
					t.Errorf("PostContent() returned empty string for valid input")
				}
				// Verify HTML is escaped
				if strings.Contains(tt.input, "<") && !strings.Contains(got, "&lt;") {
					t.Errorf("PostContent() did not escape HTML: got %q", got)
				}
			}
		})
	}
}

func TestTag(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{
			name:    "simple tag",
			input:   "golang",
			wantErr: false,
		},
		{
			name:    "turkish characters",
			input:   "yazılım",
			wantErr: false,
		},
		{
			name:    "language name with plus signs",
			input:   "c++",
			wantErr: false,
		},
		{
			name:    "language name with hash",
			input:   "c#",
			wantErr: false,
		},
		{
			name:    "tag too long",
			input:   strings.Repeat("a", 51),
			wantErr: true,
		},
		{
			name:    "empty tag",
			input:   "",
			wantErr: true,
		},
		{
			name:    "angle brackets rejected",
			input:   "<script>",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Tag(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("Tag() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !tt.wantErr && got == "" {
				t.Errorf("Tag() returned empty string for valid input")
			}
		})
	}
}

// Helper function for tests
func mustCompile(pattern string) *regexp.Regexp {
	return regexp.MustCompile(pattern)
}
