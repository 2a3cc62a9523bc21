package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/mrdg/innerpulse/audio"
)

var ErrEmptySetlist = errors.New("empty setlist")

type Song struct {
	Name string  `json:"name"`
	BPM  float64 `json:"bpm"`
	BPB  int     `json:"bpb"`
}

// DefaultSong always opens the setlist.
var DefaultSong = Song{Name: "Default", BPM: audio.DefaultBPM, BPB: 4}

// Apply sets the tempo and meter of the song on p.
func (s Song) Apply(p *audio.Params) {
	p.SetBPM(s.BPM)
	p.SetBeatsPerBar(s.BPB)
}

func (s Song) String() string {
	return fmt.Sprintf("%s (%g bpm, %d/4)", s.Name, s.BPM, s.BPB)
}

// Setlist is an ordered list of songs with a current position.
type Setlist struct {
	Songs []Song
	idx   int
}

// LoadSetlist reads the songs stored at path. DefaultSong is inserted at the
// front unless the list already starts with it. A missing or unreadable file
// yields a list with only DefaultSong; parse errors are returned alongside.
func LoadSetlist(path string) (*Setlist, error) {
	var songs []Song
	data, err := os.ReadFile(path)
	if err == nil {
		if err = json.Unmarshal(data, &songs); err != nil {
			songs = nil
			err = fmt.Errorf("parse %s: %w", path, err)
		}
	} else if errors.Is(err, fs.ErrNotExist) {
		err = nil
	}
	if len(songs) == 0 || songs[0].Name != DefaultSong.Name {
		songs = append([]Song{DefaultSong}, songs...)
	}
	return &Setlist{Songs: songs}, err
}

func (s *Setlist) Save(path string) error {
	return writeJSON(path, s.Songs)
}

func (s *Setlist) Index() int { return s.idx }

// Current returns the song at the current position.
func (s *Setlist) Current() (Song, error) {
	if len(s.Songs) == 0 {
		return Song{}, ErrEmptySetlist
	}
	return s.Songs[s.idx], nil
}

// Next moves to the following song, wrapping around at the end.
func (s *Setlist) Next() (Song, error) {
	return s.move(1)
}

// Prev moves to the preceding song, wrapping around at the start.
func (s *Setlist) Prev() (Song, error) {
	return s.move(-1)
}

// Select moves to the song at index i.
func (s *Setlist) Select(i int) (Song, error) {
	if i < 0 || i >= len(s.Songs) {
		return Song{}, fmt.Errorf("no song at position %d", i+1)
	}
	s.idx = i
	return s.Songs[i], nil
}

// Add appends song to the end of the list.
func (s *Setlist) Add(song Song) {
	s.Songs = append(s.Songs, song)
}

// Remove deletes the song at index i. DefaultSong can't be removed. The
// current position stays on the same song, or on its successor if that song
// was removed.
func (s *Setlist) Remove(i int) (Song, error) {
	if i < 0 || i >= len(s.Songs) {
		return Song{}, fmt.Errorf("no song at position %d", i+1)
	}
	if i == 0 {
		return Song{}, fmt.Errorf("can't remove %s", DefaultSong.Name)
	}
	song := s.Songs[i]
	s.Songs = append(s.Songs[:i], s.Songs[i+1:]...)
	if i < s.idx || s.idx >= len(s.Songs) {
		s.idx--
	}
	return song, nil
}

func (s *Setlist) move(delta int) (Song, error) {
	n := len(s.Songs)
	if n == 0 {
		return Song{}, ErrEmptySetlist
	}
	s.idx = ((s.idx+delta)%n + n) % n
	return s.Songs[s.idx], nil
}
