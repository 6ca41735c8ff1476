package editsession

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/voacom/commercial-intelligence-system/pkg/domain"
	"github.com/voacom/commercial-intelligence-system/services/console/internal/authsession"
	"github.com/voacom/commercial-intelligence-system/services/console/internal/platformclient"
)

// State enumerates the edit session lifecycle.
type State int

const (
	StateIdle State = iota
	StateFormOpen
	StateGenerating
	StateDraftReady
	StateAuthRequired
	StatePersisting
	StateEditing
	StateSaving
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateFormOpen:
		return "form_open"
	case StateGenerating:
		return "generating"
	case StateDraftReady:
		return "draft_ready"
	case StateAuthRequired:
		return "auth_required"
	case StatePersisting:
		return "persisting"
	case StateEditing:
		return "editing"
	case StateSaving:
		return "saving"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

var (
	ErrInvalidState  = errors.New("operation not valid in current state")
	ErrTopicRequired = errors.New("topic is required")
	ErrAuthRequired  = errors.New("login required before the draft can be saved")
	ErrEmptyDraft    = errors.New("generation produced no slides")
	ErrBadSlideIndex = errors.New("slide index out of range")
	ErrBadSlideField = errors.New("unknown slide field")
	ErrSuperseded    = errors.New("session superseded while waiting for the platform")
)

// API is the slice of the platform client the edit session needs.
type API interface {
	Login(ctx context.Context, username, password string) (string, error)
	Generate(ctx context.Context, topic, industry, targetAudience string) (domain.Outline, error)
	CreateProject(ctx context.Context, token, typ, title string, content domain.ProjectContent) (domain.Project, error)
	UpdateProject(ctx context.Context, token, id string, title *string, content *domain.ProjectContent) (domain.Project, error)
}

// Controller drives one edit session at a time. All mutating methods hold the
// lock; network calls run outside it with a captured epoch, and their results
// are discarded if the session moved on in the meantime.
type Controller struct {
	mu    sync.Mutex
	state State
	epoch uint64

	projectType string
	topic       string
	industry    string
	audience    string

	draft []domain.Slide

	projectID string
	title     string
	slides    []domain.Slide
	baseline  []domain.Slide
	selected  int

	session *authsession.Session
	client  API
	refresh func(typ string)
}

// Snapshot is a read-only view of the session for presentation.
type Snapshot struct {
	State       string         `json:"state"`
	ProjectType string         `json:"project_type,omitempty"`
	Topic       string         `json:"topic,omitempty"`
	Industry    string         `json:"industry,omitempty"`
	Audience    string         `json:"target_audience,omitempty"`
	Draft       []domain.Slide `json:"draft,omitempty"`
	ProjectID   string         `json:"project_id,omitempty"`
	Title       string         `json:"title,omitempty"`
	Slides      []domain.Slide `json:"slides,omitempty"`
	Selected    int            `json:"selected_slide"`
	Dirty       bool           `json:"dirty"`
}

// New constructs an idle controller. refresh is invoked after a successful
// create or save; it must not block (the console app runs it in a goroutine).
func New(session *authsession.Session, client API, refresh func(typ string)) *Controller {
	if refresh == nil {
		refresh = func(string) {}
	}
	return &Controller{
		state:   StateIdle,
		session: session,
		client:  client,
		refresh: refresh,
	}
}

// OpenForm starts a fresh creation flow for projectType, superseding whatever
// the session was doing.
func (c *Controller) OpenForm(projectType string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.epoch++
	c.resetLocked()
	c.state = StateFormOpen
	c.projectType = projectType
}

// Generate requests a draft outline. Valid only from FormOpen with a
// non-empty topic; the state gate keeps a single call in flight.
func (c *Controller) Generate(ctx context.Context, topic, industry, audience string) error {
	c.mu.Lock()
	if c.state != StateFormOpen {
		c.mu.Unlock()
		return fmt.Errorf("%w: generate from %s", ErrInvalidState, c.state)
	}
	topic = strings.TrimSpace(topic)
	if topic == "" {
		c.mu.Unlock()
		return ErrTopicRequired
	}
	industry = strings.TrimSpace(industry)
	audience = strings.TrimSpace(audience)
	c.topic = topic
	c.industry = industry
	c.audience = audience
	c.state = StateGenerating
	epoch := c.epoch
	c.mu.Unlock()

	outline, err := c.client.Generate(ctx, topic, industry, audience)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.epoch != epoch || c.state != StateGenerating {
		return ErrSuperseded
	}
	if err != nil {
		c.state = StateFormOpen
		return err
	}
	if len(outline.Slides) == 0 {
		c.state = StateFormOpen
		return ErrEmptyDraft
	}
	c.draft = outline.Slides
	c.state = StateDraftReady
	return nil
}

// ConfirmDraft persists the cached draft as a new project. Without a token
// the session parks in AuthRequired; Reauthenticate unblocks it.
func (c *Controller) ConfirmDraft(ctx context.Context) error {
	c.mu.Lock()
	if c.state != StateDraftReady && c.state != StateAuthRequired {
		c.mu.Unlock()
		return fmt.Errorf("%w: confirm from %s", ErrInvalidState, c.state)
	}
	token, ok := c.session.Token()
	if !ok {
		c.state = StateAuthRequired
		c.mu.Unlock()
		return ErrAuthRequired
	}
	title := c.topic
	if title == "" {
		title = "未命名项目"
	}
	typ := c.projectType
	content := domain.ProjectContent{Slides: cloneSlides(c.draft)}
	c.state = StatePersisting
	epoch := c.epoch
	c.mu.Unlock()

	project, err := c.client.CreateProject(ctx, token, typ, title, content)

	c.mu.Lock()
	if c.epoch != epoch || c.state != StatePersisting {
		c.mu.Unlock()
		return ErrSuperseded
	}
	if err != nil {
		if c.session.Expire(err) {
			c.state = StateAuthRequired
			c.mu.Unlock()
			return err
		}
		c.state = StateDraftReady
		c.mu.Unlock()
		return err
	}
	c.projectID = project.ID
	c.title = project.Title
	c.slides = cloneSlides(project.Content.Slides)
	c.baseline = cloneSlides(project.Content.Slides)
	c.selected = 0
	c.draft = nil
	c.state = StateEditing
	c.mu.Unlock()

	c.refresh(typ)
	return nil
}

// Reauthenticate performs the inline re-login from AuthRequired. On success
// the session returns to DraftReady so the confirm can be re-attempted.
func (c *Controller) Reauthenticate(ctx context.Context, username, password string) error {
	c.mu.Lock()
	if c.state != StateAuthRequired {
		c.mu.Unlock()
		return fmt.Errorf("%w: reauthenticate from %s", ErrInvalidState, c.state)
	}
	epoch := c.epoch
	c.mu.Unlock()

	token, err := c.client.Login(ctx, username, password)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.epoch != epoch || c.state != StateAuthRequired {
		return ErrSuperseded
	}
	if err != nil {
		return err
	}
	c.session.Login(token)
	c.state = StateDraftReady
	return nil
}

// OpenProject enters editing for an already persisted project, bypassing
// generation and the initial create.
func (c *Controller) OpenProject(project domain.Project) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.epoch++
	c.resetLocked()
	c.state = StateEditing
	c.projectID = project.ID
	c.projectType = project.Type
	c.title = project.Title
	c.topic = project.Title
	c.slides = cloneSlides(project.Content.Slides)
	c.baseline = cloneSlides(project.Content.Slides)
}

// SelectSlide moves the cursor. Local only.
func (c *Controller) SelectSlide(i int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateEditing {
		return fmt.Errorf("%w: select slide from %s", ErrInvalidState, c.state)
	}
	if i < 0 || i >= len(c.slides) {
		return ErrBadSlideIndex
	}
	c.selected = i
	return nil
}

// UpdateSlideField mutates one field of the buffered slide. No network per
// keystroke; changes reach the platform only on Save.
func (c *Controller) UpdateSlideField(i int, field, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateEditing {
		return fmt.Errorf("%w: edit slide from %s", ErrInvalidState, c.state)
	}
	if i < 0 || i >= len(c.slides) {
		return ErrBadSlideIndex
	}
	switch field {
	case "title":
		c.slides[i].Title = value
	case "content":
		c.slides[i].Content = value
	case "image_description":
		c.slides[i].ImageDescription = value
	case "keywords":
		c.slides[i].Keywords = value
	default:
		return ErrBadSlideField
	}
	return nil
}

// Save pushes the buffer to the platform. Success rebaselines the buffer; a
// 401 expires the auth session and closes the edit session; any other
// failure keeps the unsaved edits.
func (c *Controller) Save(ctx context.Context) error {
	c.mu.Lock()
	if c.state != StateEditing {
		c.mu.Unlock()
		return fmt.Errorf("%w: save from %s", ErrInvalidState, c.state)
	}
	token, ok := c.session.Token()
	if !ok {
		c.epoch++
		c.resetLocked()
		c.state = StateClosed
		c.mu.Unlock()
		return platformclient.ErrUnauthorized
	}
	id := c.projectID
	typ := c.projectType
	title := c.title
	content := domain.ProjectContent{Slides: cloneSlides(c.slides)}
	c.state = StateSaving
	epoch := c.epoch
	c.mu.Unlock()

	project, err := c.client.UpdateProject(ctx, token, id, &title, &content)

	c.mu.Lock()
	if c.epoch != epoch || c.state != StateSaving {
		c.mu.Unlock()
		return ErrSuperseded
	}
	if err != nil {
		if c.session.Expire(err) {
			c.epoch++
			c.resetLocked()
			c.state = StateClosed
			c.mu.Unlock()
			return err
		}
		c.state = StateEditing
		c.mu.Unlock()
		return err
	}
	c.slides = cloneSlides(project.Content.Slides)
	c.baseline = cloneSlides(project.Content.Slides)
	c.title = project.Title
	c.state = StateEditing
	c.mu.Unlock()

	c.refresh(typ)
	return nil
}

// Close ends the session. Unsaved edits are discarded without confirmation;
// Dirty lets a presentation layer warn first if it wants to.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.epoch++
	c.resetLocked()
	c.state = StateClosed
}

// ForceClose is Close under another name, registered as the auth session's
// logout hook.
func (c *Controller) ForceClose() {
	c.Close()
}

// Dirty reports whether the buffer differs from the last persisted content.
func (c *Controller) Dirty() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dirtyLocked()
}

// State returns the current lifecycle state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Snapshot captures the session for display.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Snapshot{
		State:       c.state.String(),
		ProjectType: c.projectType,
		Topic:       c.topic,
		Industry:    c.industry,
		Audience:    c.audience,
		Draft:       cloneSlides(c.draft),
		ProjectID:   c.projectID,
		Title:       c.title,
		Slides:      cloneSlides(c.slides),
		Selected:    c.selected,
		Dirty:       c.dirtyLocked(),
	}
}

func (c *Controller) dirtyLocked() bool {
	if c.state != StateEditing && c.state != StateSaving {
		return false
	}
	if len(c.slides) != len(c.baseline) {
		return true
	}
	for i := range c.slides {
		if c.slides[i] != c.baseline[i] {
			return true
		}
	}
	return false
}

func (c *Controller) resetLocked() {
	c.projectType = ""
	c.topic = ""
	c.industry = ""
	c.audience = ""
	c.draft = nil
	c.projectID = ""
	c.title = ""
	c.slides = nil
	c.baseline = nil
	c.selected = 0
}

func cloneSlides(slides []domain.Slide) []domain.Slide {
	if slides == nil {
		return nil
	}
	out := make([]domain.Slide, len(slides))
	copy(out, slides)
	return out
}
