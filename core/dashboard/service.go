package dashboard

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/rekodi/core"
	"github.com/trezcool/rekodi/core/session"
	"github.com/trezcool/rekodi/core/student"
)

var (
	// errors
	ErrNotFound = errors.New("view not found")
	ErrNoData   = core.NewValidationError(errors.New("no spreadsheet uploaded yet"))

	nowFunc = time.Now // mockable
)

type (
	Repository interface {
		// SaveView stores the view of a session for ttl; a zero ttl never expires.
		SaveView(ctx context.Context, sessionID string, v ViewState, ttl time.Duration) error
		GetView(ctx context.Context, sessionID string) (ViewState, error)
		// TouchView restarts the ttl of the view of a session.
		TouchView(ctx context.Context, sessionID string, ttl time.Duration) error
		DeleteView(ctx context.Context, sessionID string) error
	}

	// Spreadsheets encodes and decodes workbooks.
	Spreadsheets interface {
		ReadTable(r io.Reader) (student.Table, error)
		WriteTemplate(w io.Writer) error
		WriteProcessed(w io.Writer, ds student.Dataset) error
	}

	// ChartRenderer draws the named chart of the analytics.
	ChartRenderer interface {
		Render(w io.Writer, name string, a student.Analytics) error
	}

	Service struct {
		gate   *session.Gate
		repo   Repository
		sheets Spreadsheets
		charts ChartRenderer
		logger core.Logger
	}
)

func NewService(gate *session.Gate, repo Repository, sheets Spreadsheets, charts ChartRenderer, logger core.Logger) *Service {
	return &Service{
		gate:   gate,
		repo:   repo,
		sheets: sheets,
		charts: charts,
		logger: logger,
	}
}

// Session returns the session with the given ID.
// Unknown or expired sessions are replaced by a fresh LoggedOut one.
// Resuming a logged-in session keeps it and its view alive for another TTL.
func (svc *Service) Session(ctx context.Context, sessionID string) (session.Session, error) {
	s, err := svc.gate.Resume(ctx, sessionID)
	if err != nil {
		if errors.Cause(err) == session.ErrNotFound {
			return session.New(), nil
		}
		return session.Session{}, errors.Wrap(err, "resuming session")
	}
	if s.IsAuthenticated() {
		if err := svc.repo.TouchView(ctx, s.ID, svc.gate.TTL()); err != nil && errors.Cause(err) != ErrNotFound {
			return session.Session{}, errors.Wrap(err, "touching view")
		}
	}
	return s, nil
}

// Resume returns the current view of the session with the given ID.
func (svc *Service) Resume(ctx context.Context, sessionID string) (ViewState, error) {
	s, err := svc.Session(ctx, sessionID)
	if err != nil {
		return ViewState{}, err
	}
	return svc.View(ctx, s)
}

// View returns the stored view of s. A pending notice is only returned once.
func (svc *Service) View(ctx context.Context, s session.Session) (ViewState, error) {
	if !s.IsAuthenticated() {
		return newView(s, nil), nil
	}
	v, err := svc.load(ctx, s)
	if err != nil {
		return ViewState{}, err
	}
	if v.Notice != nil {
		if err := svc.save(ctx, v.WithNotice(nil)); err != nil {
			return ViewState{}, err
		}
	}
	return v, nil
}

// Login attempts to authenticate `current`.
// On failure the returned view carries the error notice and err is a *session.AuthenticationError.
func (svc *Service) Login(ctx context.Context, current session.Session, uname, pwd string) (ViewState, error) {
	s, err := svc.gate.AttemptLogin(ctx, current, uname, pwd)
	if err != nil {
		if _, ok := errors.Cause(err).(*session.AuthenticationError); ok {
			svc.logger.Warn("failed login attempt", map[string]interface{}{"username": uname}, current)
			return newView(current, failure(LoginFailedText)), err
		}
		return ViewState{}, errors.Wrap(err, "attempting login")
	}

	v := newView(s, success(LoginSuccessText))
	if err := svc.save(ctx, v); err != nil {
		return ViewState{}, err
	}
	return v, nil
}

// Logout ends s and drops its view.
func (svc *Service) Logout(ctx context.Context, s session.Session) (ViewState, error) {
	out, err := svc.gate.Logout(ctx, s)
	if err != nil {
		return ViewState{}, errors.Wrap(err, "logging out")
	}
	if s.ID != "" {
		if err := svc.repo.DeleteView(ctx, s.ID); err != nil && errors.Cause(err) != ErrNotFound {
			return ViewState{}, errors.Wrap(err, "deleting view")
		}
	}
	return newView(out, success(LogoutText)), nil
}

// Upload processes the spreadsheet read from r.
// When it cannot be processed the previous data is kept and only the notice changes;
// err is then the cause (a *student.MissingColumnsError for incomplete headers).
func (svc *Service) Upload(ctx context.Context, s session.Session, fileName string, r io.Reader) (ViewState, error) {
	prev, err := svc.authedView(ctx, s)
	if err != nil {
		return ViewState{}, err
	}

	ds, procErr := svc.process(r)
	if procErr != nil {
		var n *Notice
		switch cause := errors.Cause(procErr).(type) {
		case *student.MissingColumnsError:
			n = failure(cause.Message())
		case *core.ValidationError:
			n = failure(fmt.Sprintf(unexpectedErrorFmt, cause))
		default:
			n = failure(fmt.Sprintf(unexpectedErrorFmt, cause))
			svc.logger.Error("processing upload", errors.Wrap(procErr, fileName), s)
		}
		v, err := svc.flash(ctx, prev, n)
		if err != nil {
			return ViewState{}, err
		}
		return v, procErr
	}

	v := prev.WithDataset(fileName, ds).WithNotice(success(fmt.Sprintf(uploadSuccessFmt, len(ds.Records), fileName)))
	if err := svc.save(ctx, v); err != nil {
		return ViewState{}, err
	}
	return v, nil
}

func (svc *Service) process(r io.Reader) (student.Dataset, error) {
	table, err := svc.sheets.ReadTable(r)
	if err != nil {
		return student.Dataset{}, errors.Wrap(err, "reading spreadsheet")
	}
	ds, err := student.Load(table)
	if err != nil {
		return student.Dataset{}, errors.Wrap(err, "loading records")
	}
	return ds, nil
}

// Reject keeps the data of s and only shows reason as an error notice.
func (svc *Service) Reject(ctx context.Context, s session.Session, reason error) (ViewState, error) {
	prev, err := svc.authedView(ctx, s)
	if err != nil {
		return ViewState{}, err
	}
	return svc.flash(ctx, prev, failure(fmt.Sprintf(unexpectedErrorFmt, reason)))
}

func (svc *Service) flash(ctx context.Context, v ViewState, n *Notice) (ViewState, error) {
	v = v.WithNotice(n)
	if err := svc.save(ctx, v); err != nil {
		return ViewState{}, err
	}
	return v, nil
}

// ApplyFilter narrows the analytics of s to the records matching f.
func (svc *Service) ApplyFilter(ctx context.Context, s session.Session, f student.Filter) (ViewState, error) {
	prev, err := svc.authedView(ctx, s)
	if err != nil {
		return ViewState{}, err
	}
	if !prev.HasData() {
		return prev.WithNotice(info(UploadPromptText)), ErrNoData
	}
	v := prev.WithFilter(f)
	if err := svc.save(ctx, v); err != nil {
		return ViewState{}, err
	}
	return v, nil
}

// Export writes every processed record of s (unfiltered) as a workbook.
func (svc *Service) Export(ctx context.Context, s session.Session, w io.Writer) error {
	v, err := svc.authedView(ctx, s)
	if err != nil {
		return err
	}
	if !v.HasData() {
		return ErrNoData
	}
	return errors.Wrap(svc.sheets.WriteProcessed(w, v.Dataset()), "writing processed data")
}

// Template writes the empty upload template.
func (svc *Service) Template(w io.Writer) error {
	return errors.Wrap(svc.sheets.WriteTemplate(w), "writing template")
}

// Chart draws the named chart for the filtered records of s.
func (svc *Service) Chart(ctx context.Context, s session.Session, name string, w io.Writer) error {
	v, err := svc.authedView(ctx, s)
	if err != nil {
		return err
	}
	if v.Analytics == nil {
		return ErrNoData
	}
	return svc.charts.Render(w, name, *v.Analytics)
}

func (svc *Service) authedView(ctx context.Context, s session.Session) (ViewState, error) {
	if !s.IsAuthenticated() {
		return ViewState{}, session.ErrUnauthenticated
	}
	return svc.load(ctx, s)
}

func (svc *Service) load(ctx context.Context, s session.Session) (ViewState, error) {
	v, err := svc.repo.GetView(ctx, s.ID)
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return newView(s, nil), nil
		}
		return ViewState{}, errors.Wrap(err, "getting view")
	}
	return v.WithSession(s), nil
}

func (svc *Service) save(ctx context.Context, v ViewState) error {
	return errors.Wrap(svc.repo.SaveView(ctx, v.Session.ID, v, svc.gate.TTL()), "saving view")
}
