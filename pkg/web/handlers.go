package web

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/starfederation/datastar-go/datastar"

	"github.com/dmitrymomot/pushgate/pkg/device"
	"github.com/dmitrymomot/pushgate/pkg/identity"
	"github.com/dmitrymomot/pushgate/pkg/logger"
	"github.com/dmitrymomot/pushgate/pkg/onboarding"
	"github.com/dmitrymomot/pushgate/pkg/presenter"
	"github.com/dmitrymomot/pushgate/pkg/subscription"
	"github.com/dmitrymomot/pushgate/pkg/useragent"
)

// sessionView is the JSON shape of a session.
type sessionView struct {
	Directive presenter.Directive `json:"directive"`
	State     subscription.State  `json:"state"`
}

func viewOf(o *onboarding.Orchestrator) panelView {
	return panelView{Directive: o.Directive(), State: o.State()}
}

// served counts a directive sent to a client.
func (s *Server) served(d presenter.Directive) {
	s.metrics.ObserveDirective(d.Kind.String())
}

func (s *Server) sessionJSON(code int, o *onboarding.Orchestrator) Response {
	v := viewOf(o)
	s.served(v.Directive)
	return JSON(code, sessionView{Directive: v.Directive, State: v.State})
}

// page renders the document. A browser without a session yet gets the loading
// panel. Every load reports its runtime signals back through /directive.
func (s *Server) page(r *http.Request) Response {
	panel := panelView{
		Directive: presenter.Directive{Kind: presenter.KindLoading},
		State:     subscription.State{Status: subscription.StatusIdle},
	}
	var info *device.Info
	if key, ok := identity.FromContext(r.Context()); ok {
		if o, ok := s.registry.Get(key); ok {
			panel = viewOf(o)
			snapshot := o.Info()
			info = &snapshot
		}
	}

	ua, _ := useragent.Parse(r.UserAgent())
	return Templ(Page(pageView{
		Title:  s.title,
		Panel:  panel,
		Info:   info,
		ShowQR: !ua.IsMobile() && !ua.IsTablet() && !ua.IsBot(),
		QRAlt:  "QR code linking to this page",
	}))
}

// directive is the page's probe call; it carries the runtime signals and
// refreshes the session when they changed.
func (s *Server) directive(r *http.Request) Response {
	o, err := s.session(r, true)
	if err != nil {
		return errorResponse(err)
	}

	if IsDataStar(r) {
		v := viewOf(o)
		s.served(v.Directive)
		return Templ(Panel(v), datastar.WithSelector("#"+PanelID))
	}
	return s.sessionJSON(http.StatusOK, o)
}

// subscribe starts an attempt. Datastar clients get a stream of panel patches
// that ends once the attempt settles; JSON clients get 202 right away, or the
// settled state when called with ?wait=true.
func (s *Server) subscribe(r *http.Request) Response {
	o, err := s.session(r, false)
	if err != nil {
		return errorResponse(err)
	}

	if IsDataStar(r) {
		return ResponseFunc(func(w http.ResponseWriter, r *http.Request) error {
			s.stream(w, r, o)
			return nil
		})
	}

	wait := false
	if raw := r.URL.Query().Get("wait"); raw != "" {
		if wait, err = strconv.ParseBool(raw); err != nil {
			return errorResponse(badRequest("wait must be a boolean"))
		}
	}

	o.RequestSubscription(r.Context())
	if !wait {
		return s.sessionJSON(http.StatusAccepted, o)
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.streamTimeout)
	defer cancel()
	if err := o.Wait(ctx); err != nil {
		s.logger.WarnContext(r.Context(), "subscription still in flight", logger.Error(err))
	}
	return s.sessionJSON(http.StatusOK, o)
}

// stream patches the panel after every directive change until the attempt
// settles, the client leaves or the stream timeout passes.
func (s *Server) stream(w http.ResponseWriter, r *http.Request, o *onboarding.Orchestrator) {
	ctx := r.Context()
	updates := o.Updates(ctx)
	defer updates.Close()

	o.RequestSubscription(ctx)

	sse := datastar.NewSSE(w, r)
	patch := func(v panelView) bool {
		s.served(v.Directive)
		if err := sse.PatchElementTempl(Panel(v), datastar.WithSelector("#"+PanelID)); err != nil {
			s.logger.DebugContext(ctx, "stream closed by client", logger.Error(err))
			return false
		}
		return true
	}

	if !patch(viewOf(o)) || o.State().Settled() {
		return
	}

	timeout := time.NewTimer(s.streamTimeout)
	defer timeout.Stop()

	ch := updates.Receive(ctx)
	for {
		select {
		case msg, ok := <-ch:
			if !ok {
				return
			}
			st := o.State()
			if !patch(panelView{Directive: msg.Data, State: st}) || st.Settled() {
				return
			}
		case <-timeout.C:
			s.logger.WarnContext(ctx, "subscription stream timed out")
			return
		case <-ctx.Done():
			return
		}
	}
}

func errorResponse(err error) Response {
	return ResponseFunc(func(http.ResponseWriter, *http.Request) error { return err })
}
