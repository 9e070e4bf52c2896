package seed

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"time"

	"newsdesk/internal/models"

	"gopkg.in/yaml.v3"
)

//go:embed fixtures/newsdesk.yml
var defaultFixture []byte

// Fixture is a hand-written data set: tags, accounts and posts with their
// comments.
type Fixture struct {
	Tags  []string      `yaml:"tags"`
	Users []FixtureUser `yaml:"users"`
	Posts []FixturePost `yaml:"posts"`
}

type FixtureUser struct {
	Username string `yaml:"username"`
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
	Admin    bool   `yaml:"admin"`
}

type FixturePost struct {
	Title    string   `yaml:"title"`
	Abstract string   `yaml:"abstract"`
	Content  string   `yaml:"content"`
	Author   string   `yaml:"author"`
	Tags     []string `yaml:"tags"`
	// Enabled defaults to true.
	Enabled               *bool  `yaml:"enabled"`
	CommentsEnabled       bool   `yaml:"commentsEnabled"`
	CommentsDefaultStatus string `yaml:"commentsDefaultStatus"`
	// CommentsCloseIn is relative to seeding time; negative values close
	// comments in the past.
	CommentsCloseIn string           `yaml:"commentsCloseIn"`
	Comments        []FixtureComment `yaml:"comments"`
}

type FixtureComment struct {
	Name    string `yaml:"name"`
	Email   string `yaml:"email"`
	URL     string `yaml:"url"`
	Message string `yaml:"message"`
	Status  string `yaml:"status"`
}

// DefaultFixture returns the fixture shipped with the binary.
func DefaultFixture() (*Fixture, error) {
	return LoadFixture(bytes.NewReader(defaultFixture))
}

// LoadFixture decodes and checks a YAML fixture. Unknown keys are rejected.
func LoadFixture(r io.Reader) (*Fixture, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var f Fixture
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return &f, nil
		}
		return nil, fmt.Errorf("decode fixture: %w", err)
	}
	if err := f.check(); err != nil {
		return nil, err
	}
	return &f, nil
}

func (f *Fixture) check() error {
	users := make(map[string]bool, len(f.Users))
	for _, u := range f.Users {
		if u.Username == "" {
			return errors.New("fixture: user without username")
		}
		users[u.Username] = true
	}
	tags := make(map[string]bool, len(f.Tags))
	for _, t := range f.Tags {
		tags[t] = true
	}

	for _, p := range f.Posts {
		if !users[p.Author] {
			return fmt.Errorf("fixture: post %q has unknown author %q", p.Title, p.Author)
		}
		for _, t := range p.Tags {
			if !tags[t] {
				return fmt.Errorf("fixture: post %q has undeclared tag %q", p.Title, t)
			}
		}
		if _, err := parseStatus(p.CommentsDefaultStatus, models.CommentStatusModerate); err != nil {
			return fmt.Errorf("fixture: post %q: %w", p.Title, err)
		}
		if _, err := p.closeAt(time.Now()); err != nil {
			return fmt.Errorf("fixture: post %q: %w", p.Title, err)
		}
		for _, c := range p.Comments {
			if _, err := parseStatus(c.Status, models.CommentStatusModerate); err != nil {
				return fmt.Errorf("fixture: comment by %q: %w", c.Name, err)
			}
		}
	}
	return nil
}

func (p FixturePost) closeAt(now time.Time) (*time.Time, error) {
	if p.CommentsCloseIn == "" {
		return nil, nil
	}
	d, err := time.ParseDuration(p.CommentsCloseIn)
	if err != nil {
		return nil, fmt.Errorf("commentsCloseIn: %w", err)
	}
	at := now.Add(d)
	return &at, nil
}

// parseStatus maps a status label to its value. An empty label yields def.
func parseStatus(label string, def models.CommentStatus) (models.CommentStatus, error) {
	if label == "" {
		return def, nil
	}
	for _, c := range models.CommentStatusList() {
		if c.Label == label {
			return c.Value, nil
		}
	}
	return def, fmt.Errorf("unknown comment status %q", label)
}
