package epg

import (
	"encoding/json"
	"log"
	"os"

	"telaviva/models"
)

// LoadChannels reads the channel lineup from a local JSON file. The lineup is
// static configuration; when the file is missing or malformed the built-in
// default lineup is returned instead.
func LoadChannels(path string) []models.Channel {
	if path == "" {
		return DefaultChannels()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return DefaultChannels()
	}
	var channels []models.Channel
	if err := json.Unmarshal(data, &channels); err != nil || len(channels) == 0 {
		log.Printf("[epg] invalid channels file %s, using defaults: %v", path, err)
		return DefaultChannels()
	}
	return channels
}

// DefaultChannels returns the built-in channel lineup.
func DefaultChannels() []models.Channel {
	return []models.Channel{
		{ID: "globo", Name: "Globo", Category: "abertos", Number: 4},
		{ID: "sbt", Name: "SBT", Category: "abertos", Number: 5},
		{ID: "record", Name: "Record", Category: "abertos", Number: 7},
		{ID: "band", Name: "Band", Category: "abertos", Number: 13},
		{ID: "redetv", Name: "RedeTV!", Category: "abertos", Number: 9},
		{ID: "cultura", Name: "TV Cultura", Category: "abertos", Number: 2},
		{ID: "globonews", Name: "GloboNews", Category: "noticias", Number: 40},
		{ID: "cnnbrasil", Name: "CNN Brasil", Category: "noticias", Number: 41},
		{ID: "bandnews", Name: "BandNews TV", Category: "noticias", Number: 42},
		{ID: "recordnews", Name: "Record News", Category: "noticias", Number: 43},
		{ID: "sportv", Name: "SporTV", Category: "esportes", Number: 38},
		{ID: "sportv2", Name: "SporTV 2", Category: "esportes", Number: 39},
		{ID: "espn", Name: "ESPN", Category: "esportes", Number: 70},
		{ID: "espn2", Name: "ESPN 2", Category: "esportes", Number: 71},
		{ID: "bandsports", Name: "BandSports", Category: "esportes", Number: 72},
		{ID: "premiere", Name: "Premiere", Category: "esportes", Number: 73},
		{ID: "telecine", Name: "Telecine Premium", Category: "filmes", Number: 50},
		{ID: "hbo", Name: "HBO", Category: "filmes", Number: 52},
		{ID: "hbo2", Name: "HBO 2", Category: "filmes", Number: 53},
		{ID: "megapix", Name: "Megapix", Category: "filmes", Number: 54},
		{ID: "cinemax", Name: "Cinemax", Category: "filmes", Number: 55},
		{ID: "tnt", Name: "TNT", Category: "filmes", Number: 56},
		{ID: "space", Name: "Space", Category: "filmes", Number: 57},
		{ID: "warner", Name: "Warner Channel", Category: "series", Number: 58},
		{ID: "sony", Name: "Sony Channel", Category: "series", Number: 59},
		{ID: "universal", Name: "Universal TV", Category: "series", Number: 60},
		{ID: "axn", Name: "AXN", Category: "series", Number: 61},
		{ID: "paramount", Name: "Paramount Network", Category: "series", Number: 62},
		{ID: "fx", Name: "FX", Category: "series", Number: 63},
		{ID: "star", Name: "Star Channel", Category: "series", Number: 64},
		{ID: "multishow", Name: "Multishow", Category: "variedades", Number: 30},
		{ID: "gnt", Name: "GNT", Category: "variedades", Number: 31},
		{ID: "viva", Name: "Viva", Category: "variedades", Number: 32},
		{ID: "mtv", Name: "MTV", Category: "variedades", Number: 33},
		{ID: "comedy", Name: "Comedy Central", Category: "variedades", Number: 34},
		{ID: "discovery", Name: "Discovery Channel", Category: "documentarios", Number: 20},
		{ID: "historia", Name: "History", Category: "documentarios", Number: 21},
		{ID: "natgeo", Name: "National Geographic", Category: "documentarios", Number: 22},
		{ID: "animal", Name: "Animal Planet", Category: "documentarios", Number: 23},
		{ID: "tlc", Name: "TLC", Category: "documentarios", Number: 24},
		{ID: "cartoon", Name: "Cartoon Network", Category: "infantil", Number: 10},
		{ID: "nick", Name: "Nickelodeon", Category: "infantil", Number: 11},
		{ID: "disney", Name: "Disney Channel", Category: "infantil", Number: 12},
		{ID: "gloob", Name: "Gloob", Category: "infantil", Number: 14},
	}
}
