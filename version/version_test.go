package version

import "testing"

func restore() func() {
	v, c, b := Version, GitCommit, BuildTime
	return func() { Version, GitCommit, BuildTime = v, c, b }
}

func TestGet_LdflagsWin(t *testing.T) {
	defer restore()()
	Version, GitCommit, BuildTime = "1.2.0", "abc1234", "2026-01-02T03:04:05Z"

	info := Get()
	if info.Version != "1.2.0" || info.GitCommit != "abc1234" || info.BuildTime != "2026-01-02T03:04:05Z" {
		t.Errorf("unexpected info %+v", info)
	}
}

func TestInfo_String(t *testing.T) {
	tests := []struct {
		info Info
		want string
	}{
		{Info{Version: "dev"}, "dev"},
		{Info{Version: "1.0.0", GitCommit: "abc1234"}, "1.0.0-abc1234"},
		{Info{Version: "1.0.0", GitCommit: "abc1234", Dirty: true}, "1.0.0-abc1234-dirty"},
	}
	for _, tc := range tests {
		if got := tc.info.String(); got != tc.want {
			t.Errorf("String() = %q, want %q", got, tc.want)
		}
	}
}

func TestInfo_IsRelease(t *testing.T) {
	tests := []struct {
		info Info
		want bool
	}{
		{Info{Version: "dev"}, false},
		{Info{Version: "1.0.0"}, true},
		{Info{Version: "1.0.0", Dirty: true}, false},
		{Info{Version: "1.0.0-dirty"}, false},
	}
	for _, tc := range tests {
		if got := tc.info.IsRelease(); got != tc.want {
			t.Errorf("%+v IsRelease() = %v, want %v", tc.info, got, tc.want)
		}
	}
}

func TestShortCommit(t *testing.T) {
	if got := shortCommit("0123456789abcdef"); got != "0123456" {
		t.Errorf("expected 0123456, got %s", got)
	}
	if got := shortCommit("abc"); got != "abc" {
		t.Errorf("expected abc, got %s", got)
	}
}
