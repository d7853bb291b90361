package naming

import "testing"

func TestIsMediaFile(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"movie.mkv", true},
		{"movie.MP4", true},
		{"clip.webm", true},
		{"show.m2ts", true},
		{"notes.txt", false},
		{"poster.jpg", false},
		{"archive.mkv.part", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := IsMediaFile(tt.name); got != tt.want {
			t.Errorf("IsMediaFile(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestTrimMediaExtension(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"movie.mkv", "movie"},
		{"movie.MKV", "movie"},
		{"movie", "movie"},
		{"readme.txt", "readme.txt"},
	}
	for _, tt := range tests {
		if got := TrimMediaExtension(tt.in); got != tt.want {
			t.Errorf("TrimMediaExtension(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseTitleYear(t *testing.T) {
	tests := []struct {
		name      string
		in        string
		wantTitle string
		wantYear  string
	}{
		{name: "canonical form", in: "Inception (2010)", wantTitle: "Inception", wantYear: "2010"},
		{name: "canonical with extension", in: "Inception (2010).mkv", wantTitle: "Inception", wantYear: "2010"},
		{name: "canonical with trailing tags", in: "Inception (2010) [1080p]", wantTitle: "Inception", wantYear: "2010"},
		{name: "dotted release name", in: "Amelie.2001.mkv", wantTitle: "Amelie", wantYear: "2001"},
		{name: "underscored release name", in: "The_Matrix_1999_720p.avi", wantTitle: "The Matrix", wantYear: "1999"},
		{name: "bracket group before year", in: "[GRP] Old Boy 2003.mp4", wantTitle: "Old Boy", wantYear: "2003"},
		{name: "no year at all", in: "Some Documentary.mkv", wantTitle: "Some Documentary", wantYear: ""},
		{name: "year leads the name", in: "2001 A Space Odyssey", wantTitle: "2001 A Space Odyssey", wantYear: "2001"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			title, year := ParseTitleYear(tt.in)
			if title != tt.wantTitle || year != tt.wantYear {
				t.Fatalf("ParseTitleYear(%q) = (%q, %q), want (%q, %q)",
					tt.in, title, year, tt.wantTitle, tt.wantYear)
			}
		})
	}
}

func TestCleanForSearch(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Inception [1080p] (extended)", "Inception"},
		{"Dune 2160p", "Dune"},
		{"Plain Title", "Plain Title"},
	}
	for _, tt := range tests {
		if got := CleanForSearch(tt.in); got != tt.want {
			t.Errorf("CleanForSearch(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
