package common

// Provider name constants. Credentials are keyed by these names.
const (
	ProviderMapbox     = "mapbox"
	ProviderMapTiler   = "maptiler"
	ProviderLINZ       = "linz"
	ProviderAWS        = "aws"
	ProviderMapterhorn = "mapterhorn"
)

// KeyedProviders lists the providers whose tile templates carry an {API_KEY} placeholder
var KeyedProviders = []string{ProviderMapbox, ProviderMapTiler, ProviderLINZ}
