package audio

import "testing"

func TestCueString(t *testing.T) {
	tests := []struct {
		cue  Cue
		want string
	}{
		{cue: CueLowBattery, want: "low-battery"},
		{cue: CueShutdownStart, want: "shutdown-start"},
		{cue: CueShutdownStop, want: "shutdown-stop"},
		{cue: Cue(42), want: "unknown"},
	}
	for _, tt := range tests {
		if got := tt.cue.String(); got != tt.want {
			t.Errorf("Cue(%d).String() = %q, want %q", tt.cue, got, tt.want)
		}
	}
}

func TestDispatcher_CuePaths(t *testing.T) {
	d := &Dispatcher{
		player: "/bin/true",
		paths: map[Cue]string{
			CueLowBattery:    "/sounds/low.wav",
			CueShutdownStart: "/sounds/start.wav",
			CueShutdownStop:  "/sounds/stop.wav",
		},
	}

	tests := []struct {
		cue  Cue
		want string
		ok   bool
	}{
		{cue: CueLowBattery, want: "/sounds/low.wav", ok: true},
		{cue: CueShutdownStart, want: "/sounds/start.wav", ok: true},
		{cue: CueShutdownStop, want: "/sounds/stop.wav", ok: true},
		{cue: Cue(42), want: "", ok: false},
	}
	for _, tt := range tests {
		got, ok := d.Path(tt.cue)
		if got != tt.want || ok != tt.ok {
			t.Errorf("Path(%s) = (%q, %v), want (%q, %v)", tt.cue, got, ok, tt.want, tt.ok)
		}
	}
}

func TestDispatcher_PlayUnknownCueDoesNotSpawn(t *testing.T) {
	d := &Dispatcher{player: "/nonexistent/player", paths: map[Cue]string{}}

	// Must not panic; the unknown cue is rejected before any process is
	// spawned, so the bogus player path is never touched.
	d.Play(Cue(42))
}

func TestFindPlayer_NoCandidates(t *testing.T) {
	orig := playerCandidates
	playerCandidates = []string{"definitely-not-a-real-player-binary"}
	defer func() { playerCandidates = orig }()

	if _, err := findPlayer(); err == nil {
		t.Error("findPlayer() expected error when no candidate exists")
	}
}
