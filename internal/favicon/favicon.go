// Package favicon derives the icon shown next to a route.
package favicon

import (
	"net/url"

	"github.com/ccheshirecat/routeassist/internal/routes"
)

const (
	DefaultEndpoint     = "/cosmos/api/favicon"
	DefaultFolderIcon   = "/assets/images/icons/folder.svg"
	DefaultFallbackIcon = "/assets/images/icons/cosmos_gray.png"
)

// Resolver builds favicon URLs. Remote icons are fetched by the favicon
// endpoint; static routes and unknown routes use bundled assets.
type Resolver struct {
	Origin     routes.Origin
	Endpoint   string
	FolderIcon string
	Fallback   string
}

// New returns a Resolver using the bundled asset paths.
func New(origin routes.Origin) *Resolver {
	return &Resolver{
		Origin:     origin,
		Endpoint:   DefaultEndpoint,
		FolderIcon: DefaultFolderIcon,
		Fallback:   DefaultFallbackIcon,
	}
}

// URL returns the icon for route; nil yields the fallback icon.
func (r *Resolver) URL(route *routes.Route) string {
	if route == nil {
		return r.Fallback
	}
	switch route.Mode {
	case routes.ModeServApp, routes.ModeProxy:
		return r.remote(route.Target)
	case routes.ModeStatic:
		return r.FolderIcon
	default:
		return r.remote(r.Origin.Full(*route))
	}
}

func (r *Resolver) remote(target string) string {
	return r.Endpoint + "?q=" + url.QueryEscape(target)
}
