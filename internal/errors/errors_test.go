package errors

import (
	stderrors "errors"
	"strings"
	"testing"
)

func TestNew_RegisteredCode(t *testing.T) {
	err := New("E201")

	if err.Code != "E201" {
		t.Errorf("Code = %q, want %q", err.Code, "E201")
	}
	if err.Category != CategoryModule {
		t.Errorf("Category = %q, want %q", err.Category, CategoryModule)
	}
	if err.Message == "" {
		t.Error("Message should not be empty for a registered code")
	}
	if !strings.Contains(err.Error(), "E201") {
		t.Errorf("Error() = %q, want it to contain the code", err.Error())
	}
}

func TestNew_UnknownCode(t *testing.T) {
	err := New("E999")

	if err.Code != "E999" {
		t.Errorf("Code = %q, want %q", err.Code, "E999")
	}
	if err.Message != "Unknown error" {
		t.Errorf("Message = %q, want %q", err.Message, "Unknown error")
	}
}

func TestWrap_Unwrap(t *testing.T) {
	cause := stderrors.New("underlying")
	err := New("E202").Wrap(cause)

	if !stderrors.Is(err, cause) {
		t.Error("errors.Is should find the wrapped cause")
	}

	var se *StratoError
	if !stderrors.As(err, &se) {
		t.Error("errors.As should match *StratoError")
	}
}

func TestFluentBuilders(t *testing.T) {
	err := New("E101").
		WithDetail("neither src/pages/foo nor src/pages/foo.html exists").
		WithSuggestion("Check the path or add the extension to Options.Extensions")

	if err.Detail == "" || err.Suggestion == "" {
		t.Error("WithDetail/WithSuggestion should set fields")
	}
	if err.Code != "E101" {
		t.Error("builders should preserve the code")
	}
}

func TestFormatCompact(t *testing.T) {
	err := New("E401").Wrap(stderrors.New("address already in use"))

	got := err.FormatCompact()
	if !strings.Contains(got, "E401") {
		t.Errorf("FormatCompact() = %q, want code included", got)
	}
	if !strings.Contains(got, "address already in use") {
		t.Errorf("FormatCompact() = %q, want cause included", got)
	}
}

func TestFormat_NoColors(t *testing.T) {
	DisableColors()
	defer EnableColors()

	err := New("E301").WithSuggestion("check earlier log output")
	got := err.Format()

	if strings.Contains(got, "\033[") {
		t.Error("Format() should not contain ANSI codes when colors are disabled")
	}
	if !strings.Contains(got, "Hint: ") {
		t.Errorf("Format() = %q, want suggestion rendered", got)
	}
}

func TestFromError(t *testing.T) {
	if FromError(nil, "E202") != nil {
		t.Error("FromError(nil) should return nil")
	}

	orig := New("E201")
	if got := FromError(orig, "E202"); got != orig {
		t.Error("FromError should pass through an existing *StratoError")
	}

	wrapped := FromError(stderrors.New("boom"), "E202")
	if wrapped.Code != "E202" {
		t.Errorf("Code = %q, want E202", wrapped.Code)
	}
	if wrapped.Wrapped == nil {
		t.Error("FromError should wrap the original error")
	}
}
