package auth

import (
	"context"

	"github.com/jrsteele09/go-lms-portal/sessions"
	"github.com/jrsteele09/go-lms-portal/users"
	"github.com/rs/zerolog/log"
)

const SignInPath = "/auth/signin"

// Action is what a guarded route should do with a request
type Action int

const (
	ActionRender Action = iota
	ActionRedirect
	ActionWait
)

func (a Action) String() string {
	switch a {
	case ActionRender:
		return "render"
	case ActionRedirect:
		return "redirect"
	case ActionWait:
		return "wait"
	default:
		return "unknown"
	}
}

// Policy describes who may see a route.
// Roles empty means any signed-in user. RedirectIfAuthenticated marks sign-in style pages.
type Policy struct {
	Roles                   []users.Role
	RedirectIfAuthenticated bool
}

// Decision is the outcome of evaluating a Policy. Location is set for ActionRedirect.
type Decision struct {
	Action   Action
	Location string
}

func render() Decision {
	return Decision{Action: ActionRender}
}

func redirect(location string) Decision {
	return Decision{Action: ActionRedirect, Location: location}
}

// Evaluate decides what a route guarded by policy does for sess.
// ActionWait means a token exists but the session has not been resolved against the backend yet.
func Evaluate(policy Policy, sess sessions.Session, hasAccessToken bool) Decision {
	if hasAccessToken && !sess.IsAuthenticated && sess.User == nil {
		return Decision{Action: ActionWait}
	}

	signedIn := hasAccessToken && sess.IsAuthenticated && sess.User != nil

	if policy.RedirectIfAuthenticated {
		if signedIn {
			return redirect(users.LandingPath(sess.User.Role))
		}
		return render()
	}

	if !signedIn {
		return redirect(SignInPath)
	}
	if !sess.User.HasRole(policy.Roles...) {
		return redirect(SignInPath)
	}
	return render()
}

// Authorize evaluates policy for key, resolving the session first when it has not been resolved.
// It returns the decision and the session it was made on.
func (s *Service) Authorize(ctx context.Context, key string, policy Policy) (Decision, sessions.Session) {
	sess, hasAccessToken, hasTokens := s.snapshot(ctx, key)

	if !sess.Valid(hasAccessToken) {
		log.Warn().Str("browser", shortKey(key)).Msg("authenticated session without access token, logging out")
		store := s.repos.Tokens.For(key)
		_ = s.clear(ctx, key, store, nil)
		sess, hasAccessToken, hasTokens = s.snapshot(ctx, key)
	}

	decision := Evaluate(policy, sess, hasAccessToken)
	if decision.Action == ActionWait || (!sess.Resolved() && hasTokens) {
		if _, err := s.Initialize(ctx, key); err != nil {
			log.Debug().Str("browser", shortKey(key)).AnErr("cause", err).Msg("session not authenticated")
		}
		sess, hasAccessToken, _ = s.snapshot(ctx, key)
		decision = Evaluate(policy, sess, hasAccessToken)
		if decision.Action == ActionWait {
			// Still unresolved (backend unreachable). Sign-in pages render rather than redirect to themselves.
			decision = redirect(SignInPath)
			if policy.RedirectIfAuthenticated {
				decision = render()
			}
		}
	}

	s.metrics.GuardDecision(decision.Action.String())
	return decision, sess
}

func (s *Service) snapshot(ctx context.Context, key string) (sess sessions.Session, hasAccessToken, hasTokens bool) {
	sess = s.repos.Sessions.Get(key)
	pair, ok, err := s.repos.Tokens.For(key).Read(ctx)
	if err != nil {
		log.Err(err).Str("browser", shortKey(key)).Msg("failed to read tokens")
		return sess, false, false
	}
	if !ok {
		return sess, false, false
	}
	return sess, pair.AccessToken != "", !pair.Empty()
}
