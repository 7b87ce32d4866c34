package errors

import (
	"errors"
	"strings"
	"testing"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		contains []string
	}{
		{
			name: "full error",
			err: &Error{
				Phase:  PhaseMarshal,
				Kind:   KindUnsupportedArgument,
				Name:   "sort",
				GoType: "chan int",
				Class:  "double",
				Detail: "cannot convert",
			},
			contains: []string{"[marshal]", "unsupported_argument", "at sort", "chan int", "double", "cannot convert"},
		},
		{
			name: "minimal error",
			err: &Error{
				Phase: PhaseDispatch,
				Kind:  KindNoVarnames,
			},
			contains: []string{"[dispatch]", "no_varnames"},
		},
		{
			name: "error with cause",
			err: &Error{
				Phase:  PhaseTransport,
				Kind:   KindEngineStart,
				Detail: "launch engine",
				Cause:  errors.New("exec: not found"),
			},
			contains: []string{"[transport]", "engine_start", "launch engine", "caused by", "exec: not found"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.err.Error()
			for _, s := range tt.contains {
				if !strings.Contains(msg, s) {
					t.Errorf("error message %q does not contain %q", msg, s)
				}
			}
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := Transport("write frame", cause)

	if !errors.Is(err.Unwrap(), cause) {
		t.Error("Unwrap did not return cause")
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is should reach the cause")
	}
}

func TestError_Is(t *testing.T) {
	err := EngineExecution("Undefined function or variable 'x'.")

	if !errors.Is(err, ErrEngineExecution) {
		t.Error("sentinel without phase should match by kind")
	}
	if !err.Is(&Error{Phase: PhaseEngine, Kind: KindEngineExecution}) {
		t.Error("Is should match same phase and kind")
	}
	if err.Is(&Error{Phase: PhaseDispatch, Kind: KindEngineExecution}) {
		t.Error("Is should not match a different phase when one is given")
	}
	if errors.Is(err, ErrNoSuchObject) {
		t.Error("Is should not match a different kind")
	}

	// Transport failures and buffer overflows surface as engine execution errors.
	if !errors.Is(BufferOverflow(20000, 10000), ErrEngineExecution) {
		t.Error("buffer overflow should be an engine execution error")
	}
	if !errors.Is(Transport("read", errors.New("EOF")), ErrEngineExecution) {
		t.Error("transport failure should be an engine execution error")
	}
}

func TestBuilder(t *testing.T) {
	cause := errors.New("root")
	err := New(PhaseProxy, KindTypeMismatch).
		Name("PROXY_VAL0__").
		GoType("float64").
		Class("struct").
		Value(42).
		Cause(cause).
		Detail("expected %s, got %s", "double", "struct").
		Build()

	if err.Phase != PhaseProxy {
		t.Errorf("Phase = %v, want %v", err.Phase, PhaseProxy)
	}
	if err.Kind != KindTypeMismatch {
		t.Errorf("Kind = %v, want %v", err.Kind, KindTypeMismatch)
	}
	if err.Name != "PROXY_VAL0__" {
		t.Errorf("Name = %v, want PROXY_VAL0__", err.Name)
	}
	if err.GoType != "float64" || err.Class != "struct" {
		t.Errorf("GoType=%v Class=%v", err.GoType, err.Class)
	}
	if err.Value != 42 {
		t.Errorf("Value = %v, want 42", err.Value)
	}
	if !errors.Is(err.Cause, cause) {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}
	if err.Detail != "expected double, got struct" {
		t.Errorf("Detail = %q", err.Detail)
	}
}

func TestConvenienceConstructors(t *testing.T) {
	t.Run("UnsupportedArgument", func(t *testing.T) {
		err := UnsupportedArgument(2, make(chan int))
		if err.Kind != KindUnsupportedArgument {
			t.Errorf("Kind = %v", err.Kind)
		}
		if err.GoType != "chan int" {
			t.Errorf("GoType = %v, want chan int", err.GoType)
		}
		if !strings.Contains(err.Detail, "argument 2") {
			t.Errorf("Detail = %q, should name the argument", err.Detail)
		}
	})

	t.Run("Conversion", func(t *testing.T) {
		err := Conversion("c", []int{2, 2})
		if err.Kind != KindConversion {
			t.Errorf("Kind = %v", err.Kind)
		}
		if !strings.Contains(err.Detail, "2x2") {
			t.Errorf("Detail = %q, should contain the size", err.Detail)
		}
	})

	t.Run("EngineExecution keeps message", func(t *testing.T) {
		msg := "Error using ==> round\nIncorrect number of inputs."
		if got := EngineExecution(msg).Message(); got != msg {
			t.Errorf("Message() = %q, want %q", got, msg)
		}
	})

	t.Run("CastOnVoidCall", func(t *testing.T) {
		if err := CastOnVoidCall("disp"); !errors.Is(err, ErrCastOnVoidCall) {
			t.Errorf("got %v", err)
		}
	})

	t.Run("InvalidInput", func(t *testing.T) {
		err := InvalidInput(PhaseProxy, "field name \"no such\" is not an identifier")
		if !errors.Is(err, ErrInvalidInput) {
			t.Errorf("got %v, want invalid input", err)
		}
		if errors.Is(InvalidData(PhaseWire, "x"), ErrInvalidInput) {
			t.Error("invalid data should not match invalid input")
		}
	})

	t.Run("NoSuchObject", func(t *testing.T) {
		err := NoSuchObject("frobnicate")
		if !strings.Contains(err.Error(), "frobnicate") {
			t.Errorf("error %q should contain the name", err.Error())
		}
	})
}

func TestFormatDims(t *testing.T) {
	tests := []struct {
		dims []int
		want string
	}{
		{nil, "0x0"},
		{[]int{1, 3}, "1x3"},
		{[]int{2, 3, 4}, "2x3x4"},
	}
	for _, tt := range tests {
		if got := FormatDims(tt.dims); got != tt.want {
			t.Errorf("FormatDims(%v) = %q, want %q", tt.dims, got, tt.want)
		}
	}
}
