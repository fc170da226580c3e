package processor

import (
	"slices"
	"testing"
)

func TestDeriveAudioPath(t *testing.T) {
	tests := []struct {
		name  string
		video string
		index int
		want  string
	}{
		{"simple", "/tmp/a.mp4", 0, "/tmp/a_0.mp3"},
		{"relative", "videos/talk.mov", 3, "videos/talk_3.mp3"},
		{"double extension", "clip.tar.mp4", 1, "clip.tar_1.mp3"},
		{"no extension", "/data/raw", 2, "/data/raw_2.mp3"},
		{"hidden file", "/data/.hidden", 0, "/data/.hidden_0.mp3"},
		{"hidden with extension", "/data/.hidden.mp4", 0, "/data/.hidden_0.mp3"},
		{"dotted directory", "/data.v2/raw", 1, "/data.v2/raw_1.mp3"},
		{"trailing separator", "/data/dir.d/", 0, "/data/dir.d/_0.mp3"},
		{"only dots", "/data/...", 0, "/data/..._0.mp3"},
		{"trailing dot", "movie.", 4, "movie_4.mp3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DeriveAudioPath(tt.video, tt.index); got != tt.want {
				t.Errorf("DeriveAudioPath(%q, %d) = %q, want %q", tt.video, tt.index, got, tt.want)
			}
		})
	}
}

func TestDeriveAudioPathsKeepsSameNamesApart(t *testing.T) {
	videos := []string{"a/clip.mp4", "b/clip.mp4", "a/clip.mp4"}
	got := DeriveAudioPaths(videos)
	want := []string{"a/clip_0.mp3", "b/clip_1.mp3", "a/clip_2.mp3"}
	if !slices.Equal(got, want) {
		t.Errorf("DeriveAudioPaths() = %v, want %v", got, want)
	}
}

func TestSplitVideoPaths(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"a.mp4", []string{"a.mp4"}},
		{"a.mp4,b.mp4", []string{"a.mp4", "b.mp4"}},
		{" a.mp4 , b.mp4 ", []string{"a.mp4", "b.mp4"}},
		{"a.mp4,,b.mp4,", []string{"a.mp4", "b.mp4"}},
		{"", nil},
		{" , ", nil},
	}

	for _, tt := range tests {
		if got := SplitVideoPaths(tt.in); !slices.Equal(got, tt.want) {
			t.Errorf("SplitVideoPaths(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
