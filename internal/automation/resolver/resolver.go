// internal/automation/resolver/resolver.go
package resolver

import (
	"context"
	"strings"
	"time"

	"taskpilot/internal/automation/action"
	apperrors "taskpilot/internal/common/errors"
	"taskpilot/internal/models"
	"taskpilot/internal/session"
)

// CurrentToken is the symbolic placeholder that must be replaced with a
// concrete identifier before dispatch.
const CurrentToken = "current"

// reservedRoutes are top-level UI routes that can never be workspace
// path segments.
var reservedRoutes = map[string]bool{
	"login":     true,
	"signup":    true,
	"settings":  true,
	"admin":     true,
	"api":       true,
	"dashboard": true,
}

// IsReservedRoute reports whether a top-level path segment is a UI
// route rather than a workspace slug.
func IsReservedRoute(segment string) bool {
	return reservedRoutes[segment]
}

// Logger is the narrow logging interface the resolver needs.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
}

// WorkspaceLister is the listing collaborator used only by the
// name-to-slug fallback tier.
type WorkspaceLister interface {
	ListWorkspaces(ctx context.Context) ([]models.Workspace, error)
}

// OrgLookup supplies the persisted current-organization identifier.
type OrgLookup interface {
	CurrentOrganization(ctx context.Context) (string, error)
}

// Resolver turns symbolic or human-entered parameter values into
// concrete slugs. It never fails outright: every tier falls through to
// a generated slug so the pipeline always produces a usable value.
type Resolver struct {
	sess          *session.Context
	lister        WorkspaceLister
	orgs          OrgLookup
	lookupTimeout time.Duration
	log           Logger
}

func New(sess *session.Context, lister WorkspaceLister, orgs OrgLookup, lookupTimeout time.Duration, log Logger) *Resolver {
	if lookupTimeout <= 0 {
		lookupTimeout = 3 * time.Second
	}
	return &Resolver{
		sess:          sess,
		lister:        lister,
		orgs:          orgs,
		lookupTimeout: lookupTimeout,
		log:           log,
	}
}

// Resolve returns a new bag with symbolic placeholders and display
// names replaced by concrete identifiers. The input bag is not mutated.
func (r *Resolver) Resolve(ctx context.Context, bag *action.Bag) *action.Bag {
	snap := r.sess.Snapshot()
	out := action.NewBag()

	for _, key := range bag.Keys() {
		value, _ := bag.Get(key)
		strVal, isString := value.(string)
		if !isString {
			out.Set(key, value)
			continue
		}

		switch {
		case strings.EqualFold(strVal, CurrentToken):
			out.Set(key, r.resolveCurrent(ctx, key, snap))
		case key == "workspaceSlug" && !IsSlug(strVal):
			out.Set(key, r.ResolveWorkspaceSlug(ctx, strVal))
		default:
			out.Set(key, strVal)
		}
	}

	return out
}

// resolveCurrent maps the "current" placeholder to the execution
// context field matching the parameter name. Organization resolution
// additionally consults the persisted session value.
func (r *Resolver) resolveCurrent(ctx context.Context, key string, snap session.Snapshot) string {
	switch key {
	case "workspaceSlug", "workspace":
		return snap.Workspace
	case "projectSlug", "project":
		return snap.Project
	case "organizationSlug", "organization":
		if snap.Organization != "" {
			return snap.Organization
		}
		if r.orgs != nil {
			if org, err := r.orgs.CurrentOrganization(ctx); err == nil && org != "" {
				return org
			} else if err != nil {
				r.log.Warn("organization lookup failed", map[string]interface{}{
					"error": err.Error(),
				})
			}
		}
		return ""
	default:
		return CurrentToken
	}
}

// ResolveWorkspaceSlug resolves a human-entered workspace name to a
// canonical slug using the tiered strategy:
//
//  1. workspace segment of the active navigation path
//  2. case-insensitive display-name match against the listing
//  3. deterministic slug generation from the name
//
// Tier 2 is bounded by the lookup timeout; on timeout or error it falls
// through to tier 3 rather than failing.
func (r *Resolver) ResolveWorkspaceSlug(ctx context.Context, name string) string {
	if slug := workspaceFromPath(r.sess.Snapshot().Path); slug != "" {
		r.log.Debug("workspace slug resolved from navigation path", map[string]interface{}{
			"name": name,
			"slug": slug,
		})
		return slug
	}

	if slug := r.lookupByName(ctx, name); slug != "" {
		return slug
	}

	slug := GenerateSlug(name)
	r.log.Debug("workspace slug generated as fallback", map[string]interface{}{
		"name": name,
		"slug": slug,
	})
	return slug
}

func (r *Resolver) lookupByName(ctx context.Context, name string) string {
	if r.lister == nil {
		return ""
	}

	lookupCtx, cancel := context.WithTimeout(ctx, r.lookupTimeout)
	defer cancel()

	workspaces, err := r.lister.ListWorkspaces(lookupCtx)
	if err != nil {
		if lookupCtx.Err() != nil {
			err = apperrors.NewResolutionTimeoutError("workspaceSlug")
		}
		r.log.Warn("workspace listing failed, falling back to generated slug", map[string]interface{}{
			"name":  name,
			"error": err.Error(),
		})
		return ""
	}

	for _, ws := range workspaces {
		if strings.EqualFold(ws.Name, name) {
			return ws.Slug
		}
	}
	return ""
}

// workspaceFromPath extracts the workspace segment from a navigation
// path like "/acme/website/board". Reserved top-level routes do not
// count.
func workspaceFromPath(path string) string {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return ""
	}
	segment := strings.SplitN(trimmed, "/", 2)[0]
	if IsReservedRoute(segment) || !IsSlug(segment) {
		return ""
	}
	return segment
}
