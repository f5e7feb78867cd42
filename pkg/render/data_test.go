package render

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"src.circular.dev/pkg/testutil"
	"src.circular.dev/pkg/tt"
)

func TestFormat(t *testing.T) {
	tt.Test(t, tt.Fn("Format", Format), tt.Table{
		tt.Args("data.yaml").Rets("yaml"),
		tt.Args("data.YML").Rets("yaml"),
		tt.Args("dir/data.toml").Rets("toml"),
		tt.Args("data.json").Rets("json"),
		tt.Args("data.txt").Rets("txt"),
		tt.Args("data").Rets(""),
	})
}

var wantData = map[string]any{
	"title": "Colours",
	"count": 2,
	"ratio": 0.5,
	"items": []any{
		map[string]any{"name": "Red", "on": true},
		map[string]any{"name": "Blue", "on": false},
	},
}

var decodeTests = []struct {
	format string
	src    string
}{
	{"yaml", `
title: Colours
count: 2
ratio: 0.5
items:
  - name: Red
    on: true
  - name: Blue
    on: false
`},
	{"toml", `
title = "Colours"
count = 2
ratio = 0.5

[[items]]
name = "Red"
on = true

[[items]]
name = "Blue"
on = false
`},
	{"json", `{"title": "Colours", "count": 2, "ratio": 0.5,
		"items": [{"name": "Red", "on": true}, {"name": "Blue", "on": false}]}`},
}

func TestDecode(t *testing.T) {
	for _, test := range decodeTests {
		got, err := Decode(test.format, strings.NewReader(test.src))
		if err != nil {
			t.Errorf("Decode(%q) -> error %v", test.format, err)
			continue
		}
		if diff := cmp.Diff(wantData, got); diff != "" {
			t.Errorf("Decode(%q) (-want +got):\n%s", test.format, diff)
		}
	}
}

func TestDecode_EmptyYAML(t *testing.T) {
	got, err := Decode("yaml", strings.NewReader(""))
	if err != nil || len(got) != 0 {
		t.Errorf("Decode -> %v, %v, want empty map", got, err)
	}
}

func TestDecode_Errors(t *testing.T) {
	for _, test := range []struct{ format, src string }{
		{"yaml", "- a list"},
		{"toml", "a = "},
		{"json", "[1]"},
		{"xml", "<a/>"},
	} {
		if _, err := Decode(test.format, strings.NewReader(test.src)); err == nil {
			t.Errorf("Decode(%q, %q) -> no error", test.format, test.src)
		}
	}
}

func TestLoadData(t *testing.T) {
	testutil.InTempDir(t)
	testutil.MustWriteFile("d.json", `{"a": [1, 2.5]}`)
	got, err := LoadData("d.json")
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(map[string]any{"a": []any{1, 2.5}}, got); diff != "" {
		t.Errorf("LoadData (-want +got):\n%s", diff)
	}
	if _, err := LoadData("missing.yaml"); err == nil {
		t.Errorf("LoadData of a missing file -> no error")
	}
	testutil.MustWriteFile("bad.toml", "[")
	if _, err := LoadData("bad.toml"); err == nil || !strings.HasPrefix(err.Error(), "bad.toml: ") {
		t.Errorf("LoadData(bad.toml) -> %v", err)
	}
}
