package epg

import (
	"fmt"
	"net/url"
)

// Provider identifies one of the external schedule sites.
type Provider string

const (
	ProviderMeuGuia Provider = "meuguia"
	ProviderMiTV    Provider = "mitv"
	ProviderGatoTV  Provider = "gatotv"
)

// Source is a resolved (provider, channel code) pair.
type Source struct {
	Provider Provider
	Code     string
}

// URL builds the provider page for this source's channel.
func (s Source) URL() string {
	switch s.Provider {
	case ProviderMeuGuia:
		return "https://meuguia.tv/programacao/canal/" + url.PathEscape(s.Code)
	case ProviderMiTV:
		return "https://mi.tv/br/canais/" + url.PathEscape(s.Code)
	case ProviderGatoTV:
		return "https://www.gatotv.com/canal/" + url.PathEscape(s.Code)
	}
	return ""
}

func (s Source) String() string {
	return fmt.Sprintf("%s:%s", s.Provider, s.Code)
}

// Per-provider channel code tables. A channel id maps to at most one source;
// the tables are checked in fixed priority order (meuguia, then mi.tv, then
// gatotv). Channels absent from all three have no EPG, permanently.
var meuguiaCodes = map[string]string{
	"globo":      "REDEGLOBO",
	"sbt":        "SBT",
	"record":     "RECORD",
	"band":       "BANDEIRANTES",
	"redetv":     "REDETV",
	"cultura":    "TVCULTURA",
	"globonews":  "GLOBONEWS",
	"sportv":     "SPORTV",
	"sportv2":    "SPORTV2",
	"sportv3":    "SPORTV3",
	"multishow":  "MULTISHOW",
	"gnt":        "GNT",
	"viva":       "VIVA",
	"gloob":      "GLOOB",
	"megapix":    "MEGAPIX",
	"telecine":   "TELECINEPREMIUM",
	"hbo":        "HBO",
	"hbo2":       "HBO2",
	"warner":     "WARNERCHANNEL",
	"sony":       "SONY",
	"universal":  "USA",
	"tnt":        "TNT",
	"space":      "SPACE",
	"axn":        "AXN",
	"paramount":  "PARAMOUNT",
	"cinemax":    "MAX",
	"historia":   "HISTORY",
	"discovery":  "DISCOVERYCHANNEL",
	"natgeo":     "NATGEO",
	"animal":     "ANIMALPLANET",
	"cartoon":    "CARTOONNETWORK",
	"nick":       "NICKELODEON",
	"disney":     "DISNEYCHANNEL",
	"mtv":        "MTV",
	"comedy":     "COMEDYCENTRAL",
	"espn":       "ESPN",
	"espn2":      "ESPN2",
	"bandsports": "BANDSPORTS",
	"premiere":   "PFC",
}

var miCodes = map[string]string{
	"globo":     "rede-globo",
	"sbt":       "sbt",
	"record":    "record",
	"band":      "band",
	"redebrasil": "rede-brasil",
	"aparecida": "tv-aparecida",
	"fx":        "fx",
	"star":      "star-channel",
	"tlc":       "tlc",
	"discoveryhh": "discovery-home-health",
	"foodnetwork": "food-network",
	"cnnbrasil": "cnn-brasil",
	"bandnews":  "bandnews",
	"recordnews": "record-news",
	"futura":    "futura",
	"curta":     "curta",
}

var gatoCodes = map[string]string{
	"globo":    "rede_globo",
	"sbt":      "sbt",
	"telecine": "telecine_premium",
	"tcm":      "tcm",
	"syfy":     "syfy",
	"e":        "e_entertainment",
	"lifetime": "lifetime",
	"amc":      "amc",
	"cinecanal": "cinecanal",
	"tvcine":   "tv_cine",
}

// SourceFor resolves a channel id to its schedule source. ok is false for
// channels with no mapping in any provider table; those channels are
// permanently unfetchable and callers must not retry them.
func SourceFor(channelID string) (Source, bool) {
	if code, ok := meuguiaCodes[channelID]; ok {
		return Source{Provider: ProviderMeuGuia, Code: code}, true
	}
	if code, ok := miCodes[channelID]; ok {
		return Source{Provider: ProviderMiTV, Code: code}, true
	}
	if code, ok := gatoCodes[channelID]; ok {
		return Source{Provider: ProviderGatoTV, Code: code}, true
	}
	return Source{}, false
}
