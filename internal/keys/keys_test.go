package keys

import (
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeFileName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", "cat.jpg", "cat.jpg"},
		{"traversal", "../../etc/passwd", "passwd"},
		{"backslash path", `C:\Users\me\report.pdf`, "report.pdf"},
		{"special chars", "My File!@#.PNG", "MyFile.PNG"},
		{"empty", "", "file"},
		{"only separators", "///", "file"},
		{"nul bytes", "a\x00b.txt", "ab.txt"},
		{"unicode stripped", "résumé.pdf", "rsum.pdf"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeFileName(tt.input))
		})
	}
}

func TestSanitizeFileNameInvariants(t *testing.T) {
	safe := regexp.MustCompile(`^[A-Za-z0-9._-]+$`)
	inputs := []string{
		"", "a", "../../../x", "a/b/c", `a\b\c`, "\x00\x00", "日本語.txt",
		strings.Repeat("A", 1000), strings.Repeat("../", 200) + "x",
	}
	for _, in := range inputs {
		out := SanitizeFileName(in)
		assert.NotEmpty(t, out, "input %q", in)
		assert.LessOrEqual(t, len(out), 255, "input %q", in)
		assert.Regexp(t, safe, out, "input %q", in)
		assert.NotContains(t, out, "/", "input %q", in)
		assert.NotContains(t, out, `\`, "input %q", in)
	}
}

func TestSanitizeFolder(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", "docs", "docs"},
		{"traversal", "../x", ""},
		{"absolute", "/abs", ""},
		{"backslash absolute", `\abs`, ""},
		{"empty", "", ""},
		{"whitespace", "   ", ""},
		{"dots stripped", "my.folder", "myfolder"},
		{"slash stripped", "a/b", "ab"},
		{"long truncated", strings.Repeat("d", 100), strings.Repeat("d", 64)},
		{"all invalid", "!!!", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeFolder(tt.input))
		})
	}
}

func TestBuildObjectKey(t *testing.T) {
	assert.Equal(t, "docs/u1/1000_a.png", BuildObjectKey("docs", "u1", "a.png", 1000))
	assert.Equal(t, "u1/1000_a.png", BuildObjectKey("", "u1", "a.png", 1000))
}

func TestBuildObjectKeySanitizesOwner(t *testing.T) {
	assert.Equal(t, "ab/1000_f", BuildObjectKey("", "a/b", "f", 1000))
	assert.Equal(t, "unknown/1000_f", BuildObjectKey("", "!!!", "f", 1000))

	longOwner := strings.Repeat("u", 200)
	key := BuildObjectKey("", longOwner, "f", 1000)
	assert.Equal(t, strings.Repeat("u", 128)+"/1000_f", key)
}

func TestBelongsToUser(t *testing.T) {
	tests := []struct {
		name   string
		key    string
		userID string
		want   bool
	}{
		{"owner no folder", "u1/1000_a.png", "u1", true},
		{"owner with folder", "docs/u1/1000_a.png", "u1", true},
		{"other owner", "docs/u2/1000_a.png", "u1", false},
		{"other owner no folder", "u2/1000_a.png", "u1", false},
		{"traversal", "../u1/1000_a.png", "u1", false},
		{"embedded traversal", "docs/u1/..%2F1000_a.png", "u1", false},
		{"nul byte", "u1/1000_a\x00.png", "u1", false},
		{"empty", "", "u1", false},
		{"single segment", "u1", "u1", false},
		{"bad escape", "u1/%zz_a.png", "u1", false},
		{"encoded slashes", "docs%2Fu1%2F1000_a.png", "u1", true},
		{"repeated slashes", "docs//u1//1000_a.png", "u1", true},
		// Four or more segments still check only segment index 1.
		{"deep key owner second", "a/u1/b/1000_a.png", "u1", true},
		{"deep key owner third", "a/b/u1/1000_a.png", "u1", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BelongsToUser(tt.key, tt.userID))
		})
	}
}

func TestBuiltKeysBelongToTheirOwner(t *testing.T) {
	for _, folder := range []string{"", "docs"} {
		key := BuildObjectKey(folder, "user-42", SanitizeFileName("../../etc/passwd"), 1234)
		assert.True(t, BelongsToUser(key, "user-42"), "key %q", key)
		assert.False(t, BelongsToUser(key, "user-43"), "key %q", key)
	}
}
