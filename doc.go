// Package clinicauth manages the client-side authenticated session of a
// multi-role clinic portal: establishing it on login, reconstructing it
// from persisted state at startup (hydration), refreshing it, degrading
// it gracefully when the backend is unreachable, and tearing it down on
// logout.
//
// The long-lived object is the [Manager], built via [New]:
//
//	mgr, err := clinicauth.New().
//		WithConfig(cfg).
//		WithStateDir(dir).
//		Build()
//
// Call [Manager.Hydrate] once at startup, then read [Manager.Session]
// wherever the current user matters. Per-navigation authorization lives
// in the guard subpackage, which maps a session snapshot and a route's
// requirements to an allow/redirect decision.
//
// All session mutation funnels through the Manager; completions of
// in-flight network work commit only if their generation still matches,
// so a logout can never be undone by a stale response.
package clinicauth
