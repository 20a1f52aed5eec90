package program

import (
	"reflect"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestSplitStatements(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{"Single", `PRINT "HI"`, []string{`PRINT "HI"`}},
		{"Two", `A=1:B=2`, []string{"A=1", "B=2"}},
		{"Quoted colon", `PRINT "A:B":X=1`, []string{`PRINT "A:B"`, "X=1"}},
		{"Remark keeps colons", `X=1:REM A:B`, []string{"X=1", "REM A:B"}},
		{"Empty", ``, []string{""}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SplitStatements(tt.input)
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("SplitStatements(%q): expected %q, got %q", tt.input, tt.expected, got)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	p := Load([]string{
		"30 END",
		"10 A=1:B=2:PRINT A+B",
		"garbage line",
		"",
		"20 PRINT \"X:Y\"",
	})

	expected := []Statement{
		{Key{10, 0}, "A=1"},
		{Key{10, 1}, "B=2"},
		{Key{10, 2}, "PRINT A+B"},
		{Key{20, 0}, `PRINT "X:Y"`},
		{Key{30, 0}, "END"},
	}
	if !reflect.DeepEqual(p.Statements, expected) {
		t.Errorf("Load: expected %v, got %v", expected, p.Statements)
	}
}

func TestLoad_DuplicateKeepsLast(t *testing.T) {
	p := Load([]string{"10 PRINT 1", "10 PRINT 2"})
	if p.Len() != 1 {
		t.Fatalf("Len: expected 1, got %d", p.Len())
	}
	if p.At(0).Text != "PRINT 2" {
		t.Errorf("Text: expected %q, got %q", "PRINT 2", p.At(0).Text)
	}
}

func TestFindIndex(t *testing.T) {
	p := Load([]string{"10 A=1:B=2", "20 END", "100 RETURN"})

	tests := []struct {
		key   Key
		index int
		found bool
	}{
		{Key{10, 0}, 0, true},
		{Key{10, 1}, 1, true},
		{Key{20, 0}, 2, true},
		{Key{100, 0}, 3, true},
		{Key{15, 0}, 2, false},
		{Key{200, 0}, 4, false},
	}
	for _, tt := range tests {
		idx, ok := p.FindIndex(tt.key)
		if ok != tt.found || (ok && idx != tt.index) {
			t.Errorf("FindIndex(%v): expected (%d, %t), got (%d, %t)", tt.key, tt.index, tt.found, idx, ok)
		}
	}
}

func TestParseKey(t *testing.T) {
	tests := []struct {
		input string
		want  Key
		ok    bool
	}{
		{"10", Key{10, 0}, true},
		{"10.2", Key{10, 2}, true},
		{" 7 ", Key{7, 0}, true},
		{"", Key{}, false},
		{"-5", Key{}, false},
		{"1e3", Key{}, false},
		{"10.", Key{}, false},
	}
	for _, tt := range tests {
		got, ok := ParseKey(tt.input)
		if ok != tt.ok || got != tt.want {
			t.Errorf("ParseKey(%q): expected (%v, %t), got (%v, %t)", tt.input, tt.want, tt.ok, got, ok)
		}
	}
}

func TestDecodeSource(t *testing.T) {
	legacy := []byte("10 PRINT \"caf\xe9\"\r\n20 END\r\n")
	got := DecodeSource(legacy)
	want := "10 PRINT \"café\"\n20 END\n"
	if got != want {
		t.Errorf("DecodeSource: expected %q, got %q", want, got)
	}

	if got := DecodeSource([]byte("\ufeff10 END")); got != "10 END" {
		t.Errorf("DecodeSource BOM: expected %q, got %q", "10 END", got)
	}
}

func TestProperty_LoadSortedAndSearchable(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200

	properties := gopter.NewProperties(parameters)

	properties.Property("loaded statements ascend and every key is found at its index", prop.ForAll(
		func(numbers []int, colons []int) bool {
			raw := make([]string, len(numbers))
			for i, n := range numbers {
				text := "PRINT 1"
				if len(colons) > 0 {
					for c := 0; c < colons[i%len(colons)]; c++ {
						text += ":PRINT 2"
					}
				}
				raw[i] = Key{Line: n}.String() + " " + text
			}
			p := Load(raw)
			for i := 1; i < p.Len(); i++ {
				if !p.At(i - 1).Key.Less(p.At(i).Key) {
					return false
				}
			}
			for i := 0; i < p.Len(); i++ {
				idx, ok := p.FindIndex(p.At(i).Key)
				if !ok || idx != i {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.IntRange(0, 65529)),
		gen.SliceOf(gen.IntRange(0, 4)),
	))

	properties.TestingRun(t)
}
