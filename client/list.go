package client

import "context"

type Lister interface {
	List(ctx context.Context) ([]Developer, error)
	Delete(ctx context.Context, id string) error
}

// DeveloperList is the state behind the registrations screen.
type DeveloperList struct {
	api        Lister
	developers []Developer
}

func NewDeveloperList(api Lister) *DeveloperList {
	return &DeveloperList{api: api}
}

// Load replaces the local rows with everything the server has.
func (l *DeveloperList) Load(ctx context.Context) error {
	developers, err := l.api.List(ctx)
	if err != nil {
		return err
	}
	l.developers = developers
	return nil
}

func (l *DeveloperList) Developers() []Developer {
	out := make([]Developer, len(l.developers))
	copy(out, l.developers)
	return out
}

// Delete asks the server to delete id and drops the local row only once the
// server confirms. On failure the list is left as it was.
func (l *DeveloperList) Delete(ctx context.Context, id string) error {
	if err := l.api.Delete(ctx, id); err != nil {
		return err
	}

	kept := l.developers[:0:0]
	for _, developer := range l.developers {
		if developer.Id != id {
			kept = append(kept, developer)
		}
	}
	l.developers = kept
	return nil
}
