package value

import (
	"math"
	"testing"
)

func TestFromRows_ColumnMajor(t *testing.T) {
	a, err := FromRows([][]float64{{1, 2, 3}, {4, 5, 6}})
	if err != nil {
		t.Fatalf("FromRows: %v", err)
	}
	if d := a.Dims(); len(d) != 2 || d[0] != 2 || d[1] != 3 {
		t.Fatalf("Dims = %v, want [2 3]", d)
	}
	want := []float64{1, 4, 2, 5, 3, 6}
	got := a.Real()
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Real = %v, want %v", got, want)
		}
	}
	if a.At(1, 2) != 6 {
		t.Errorf("At(1,2) = %v, want 6", a.At(1, 2))
	}
}

func TestFromRows_Empty(t *testing.T) {
	tests := []struct {
		name string
		rows [][]float64
		want []int
	}{
		{"no rows", nil, []int{0, 0}},
		{"one empty row", [][]float64{{}}, []int{1, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := FromRows(tt.rows)
			if err != nil {
				t.Fatalf("FromRows: %v", err)
			}
			d := a.Dims()
			if d[0] != tt.want[0] || d[1] != tt.want[1] {
				t.Errorf("Dims = %v, want %v", d, tt.want)
			}
		})
	}
}

func TestFromRows_Ragged(t *testing.T) {
	if _, err := FromRows([][]float64{{1, 2}, {3}}); err == nil {
		t.Fatal("expected error for ragged rows")
	}
}

func TestTranspose(t *testing.T) {
	a, _ := FromRows([][]float64{{1, 2, 3}, {4, 5, 6}})
	b := a.Transpose()
	want, _ := FromRows([][]float64{{1, 4}, {2, 5}, {3, 6}})
	if !b.Equal(want) {
		t.Errorf("Transpose = %v, want %v", b, want)
	}
	if !b.Transpose().Equal(a) {
		t.Error("double transpose should be identity")
	}
}

func TestComplex(t *testing.T) {
	a, err := FromComplex([]int{3, 1}, []complex128{1 + 3i, -4 + 2i, 6 - 5i})
	if err != nil {
		t.Fatalf("FromComplex: %v", err)
	}
	if !a.IsComplex() {
		t.Fatal("expected complex array")
	}
	if a.At(2, 0) != 6-5i {
		t.Errorf("At(2,0) = %v", a.At(2, 0))
	}
	if s := a.String(); s != "[1+3i; -4+2i; 6-5i]" {
		t.Errorf("String = %q", s)
	}

	// All-zero imaginary parts collapse to a real array, like the engine does.
	r, _ := FromComplex([]int{1, 2}, []complex128{1, 2})
	if r.IsComplex() {
		t.Error("zero imaginary parts should yield a real array")
	}
}

func TestReshapeAndFloat(t *testing.T) {
	a := Row(7)
	if x, ok := a.Float(); !ok || x != 7 {
		t.Errorf("Float = %v, %v", x, ok)
	}
	v, err := Row(1, 2, 3).Reshape(3)
	if err != nil {
		t.Fatalf("Reshape: %v", err)
	}
	if !v.Equal(Vector(1, 2, 3)) {
		t.Errorf("Reshape = %v", v)
	}
	if _, err := v.Reshape(2, 2); err == nil {
		t.Error("expected error reshaping 3 elements to 2x2")
	}
}

func TestEqual_NaN(t *testing.T) {
	if !Row(math.NaN(), 1).Equal(Row(math.NaN(), 1)) {
		t.Error("NaNs should compare equal")
	}
	if Row(1, 2).Equal(Column(1, 2)) {
		t.Error("different shapes should not be equal")
	}
}

func TestChar(t *testing.T) {
	if d := Char("").Dims(); d[0] != 0 || d[1] != 0 {
		t.Errorf("empty char dims = %v", d)
	}
	if d := Char("héllo").Dims(); d[0] != 1 || d[1] != 5 {
		t.Errorf("char dims = %v, want [1 5]", d)
	}
	if Char("x").Class() != "char" {
		t.Error("class should be char")
	}
}
