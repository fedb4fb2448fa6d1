package printer

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	utilInternal "github.com/AlexStarov/escpos-netprint/util"
)

// State is a step in the life of a Session.
type State int

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
	StateSending
	StateFinishing
	StateClosed
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateSending:
		return "sending"
	case StateFinishing:
		return "finishing"
	case StateClosed:
		return "closed"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Opener produces the printer a Session writes to.
type Opener func(ctx context.Context) (*Printer, error)

// Result describes a finished Send.
type Result struct {
	JobID        string
	Profile      string
	BytesWritten int
	State        State
}

var errSessionUsed = errors.New("session already used")

// Session sends one print job: open, payload, line feed, cut, close.
// A Session is single use and not safe for concurrent use.
type Session struct {
	open       Opener
	profile    Profile
	initialize bool
	jobID      string
	logger     *zap.Logger
	state      State
}

type Option func(*Session)

// WithInitialize sends ESC @ before the payload.
func WithInitialize(on bool) Option {
	return func(s *Session) { s.initialize = on }
}

// WithJobID overrides the generated job id.
func WithJobID(id string) Option {
	return func(s *Session) { s.jobID = id }
}

// NewSession resolves profileName (falling back to the default profile with
// a warning) and prepares a job that will write through open.
func NewSession(open Opener, profileName string, logger *zap.Logger, opts ...Option) *Session {
	s := &Session{
		open:  open,
		jobID: uuid.NewString(),
		state: StateDisconnected,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.logger = logger.Named("session").With(zap.String("job_id", s.jobID))
	s.profile = ResolveProfile(profileName, s.logger)
	return s
}

func (s *Session) Profile() Profile { return s.profile }
func (s *Session) JobID() string    { return s.jobID }
func (s *Session) State() State     { return s.state }

// Send writes payload followed by a line feed and a cut. Any failure to
// open or write is reported as ErrConnection; nothing is retried and a
// partial job is not resumed. The transport is closed on every path.
func (s *Session) Send(ctx context.Context, payload []byte) (res Result, err error) {
	res = Result{JobID: s.jobID, Profile: s.profile.ID}
	if s.state != StateDisconnected {
		return res, errSessionUsed
	}

	s.transition(StateConnecting)
	p, err := s.open(ctx)
	if err != nil {
		s.transition(StateFailed)
		res.State = s.state
		return res, fmt.Errorf("%w: %w", utilInternal.ErrConnection, err)
	}
	s.transition(StateConnected)

	defer func() {
		if err == nil {
			s.transition(StateFinishing)
		}
		if cerr := p.CloseConnection(); cerr != nil {
			err = multierr.Append(err, fmt.Errorf("%w: close: %w", utilInternal.ErrConnection, cerr))
		}
		if err != nil {
			s.transition(StateFailed)
		} else {
			s.transition(StateClosed)
		}
		res.State = s.state
	}()

	s.transition(StateSending)
	steps := []struct {
		name  string
		write func() (int, error)
	}{
		{"initialize", p.Init},
		{"raster", func() (int, error) { return p.Write(payload) }},
		{"line feed", p.Linefeed},
		{"cut", p.Cut},
	}
	if !s.initialize {
		steps = steps[1:]
	}

	for _, step := range steps {
		n, werr := step.write()
		res.BytesWritten += n
		if werr != nil {
			s.logger.Error("Write failed, print job is incomplete",
				zap.String("step", step.name),
				zap.Int("bytes", res.BytesWritten),
				zap.Error(werr),
			)
			return res, fmt.Errorf("%w: write %s: %w", utilInternal.ErrConnection, step.name, werr)
		}
	}

	s.logger.Debug("Job written", zap.Int("bytes", res.BytesWritten))
	return res, nil
}

func (s *Session) transition(next State) {
	s.logger.Debug("Session state", zap.Stringer("from", s.state), zap.Stringer("to", next))
	s.state = next
}
