package metadata

import "strings"

// genreSegmentSeparator delimits genre hierarchy levels,
// e.g. "Pop/Rock→Rock→Rock alternatif et Indé".
const genreSegmentSeparator = "→"

// genreTranslations maps localized genre names to their English equivalents.
// The catalog serves genre names in the storefront language, so the same
// release may carry "Musique électronique", "Elektronische Musik" or
// "Música electrónica" depending on the account region.
//
//nolint:gochecknoglobals // Immutable lookup table used as a constant.
var genreTranslations = map[string]string{
	// French.
	"Rock alternatif et Indé":     "Alternative & Indie",
	"Musique électronique":        "Electronic",
	"Électronique":                "Electronic",
	"Variété française":           "French Pop",
	"Chanson française":           "French Song",
	"Musique classique":           "Classical",
	"Musique de film":             "Soundtrack",
	"Musiques du monde":           "World Music",
	"Métal":                       "Metal",
	"Jazz vocal":                  "Vocal Jazz",
	"Jazz contemporain":           "Contemporary Jazz",
	"Blues acoustique":            "Acoustic Blues",
	"Soul, Funk, R&B":             "Soul, Funk, R&B",
	"Rap, Hip-Hop":                "Hip-Hop/Rap",
	"Comédies musicales":          "Musicals",
	"Musique de chambre":          "Chamber Music",
	"Musique sacrée":              "Sacred Music",
	"Musique concertante":         "Concertos",
	"Musique symphonique":         "Symphonic Music",
	"Opéra":                       "Opera",
	"Mélodies et Lieder":          "Art Songs & Lieder",
	"Musique pour enfants":        "Children's Music",
	"Ambiances et Relaxation":     "Ambient & Relaxation",
	"Chants de Noël":              "Christmas Music",
	"Country américaine":          "Country",
	"Folk américain":              "American Folk",
	"Musiques celtiques":          "Celtic Music",
	"Musiques africaines":         "African Music",
	"Musiques latines":            "Latin Music",
	"Musique brésilienne":         "Brazilian Music",
	"Reggae, Ska et Dub":          "Reggae, Ska & Dub",
	"Bandes originales de films":  "Film Soundtracks",
	"Bandes originales de séries": "TV Soundtracks",
	"Rock indépendant":            "Indie Rock",
	"Rock progressif":             "Progressive Rock",
	"Rock psychédélique":          "Psychedelic Rock",
	"Hard Rock métallique":        "Hard Rock",
	"Punk et Nouvelle vague":      "Punk & New Wave",
	"Électro pop":                 "Electropop",
	"Danse électronique":          "Dance",
	"Piano classique":             "Classical Piano",
	"Guitare classique":           "Classical Guitar",

	// German.
	"Elektronische Musik":    "Electronic",
	"Klassische Musik":       "Classical",
	"Alternative und Indie":  "Alternative & Indie",
	"Filmmusik":              "Soundtrack",
	"Weltmusik":              "World Music",
	"Kammermusik":            "Chamber Music",
	"Sinfonische Musik":      "Symphonic Music",
	"Geistliche Musik":       "Sacred Music",
	"Deutsche Schlager":      "German Pop",
	"Volksmusik":             "Folk Music",
	"Kinderlieder":           "Children's Music",
	"Weihnachtslieder":       "Christmas Music",
	"Oper":                   "Opera",
	"Lieder und Kunstlieder": "Art Songs & Lieder",
	"Tanzmusik":              "Dance",
	"Hörbücher":              "Audiobooks",

	// Spanish.
	"Música electrónica":  "Electronic",
	"Música clásica":      "Classical",
	"Alternativa e Indie": "Alternative & Indie",
	"Banda sonora":        "Soundtrack",
	"Música del mundo":    "World Music",
	"Música de cámara":    "Chamber Music",
	"Música sinfónica":    "Symphonic Music",
	"Música sacra":        "Sacred Music",
	"Música latina":       "Latin Music",
	"Música infantil":     "Children's Music",
	"Villancicos":         "Christmas Music",
	"Ópera":               "Opera",
	"Flamenco y canción":  "Flamenco",
	"Baile":               "Dance",

	// Italian.
	"Musica elettronica":   "Electronic",
	"Musica classica":      "Classical",
	"Alternativa e indie":  "Alternative & Indie",
	"Colonne sonore":       "Soundtrack",
	"Musica dal mondo":     "World Music",
	"Musica da camera":     "Chamber Music",
	"Musica sinfonica":     "Symphonic Music",
	"Musica sacra":         "Sacred Music",
	"Musica per bambini":   "Children's Music",
	"Canzoni di Natale":    "Christmas Music",
	"Canzone italiana":     "Italian Song",

	// Portuguese.
	"Música eletrónica":         "Electronic",
	"Música clássica":           "Classical",
	"Alternativo e Indie":       "Alternative & Indie",
	"Banda sonora de filme":     "Soundtrack",
	"Música do mundo":           "World Music",
	"Música de câmara":          "Chamber Music",
	"Música sinfónica clássica": "Symphonic Music",
	"Música brasileira":         "Brazilian Music",
	"Música infantil e juvenil": "Children's Music",
	"Música de Natal":           "Christmas Music",

	// Dutch.
	"Elektronische muziek": "Electronic",
	"Klassieke muziek":     "Classical",
	"Wereldmuziek":         "World Music",
	"Kamermuziek":          "Chamber Music",
	"Kindermuziek":         "Children's Music",
	"Kerstmuziek":          "Christmas Music",
}

// genreTranslationsFolded keys the translation table by lowercased name,
// the catalog is not consistent about genre capitalization.
//
//nolint:gochecknoglobals // Derived lookup table, built once at startup.
var genreTranslationsFolded = func() map[string]string {
	folded := make(map[string]string, len(genreTranslations))
	for name, english := range genreTranslations {
		folded[strings.ToLower(name)] = english
	}

	return folded
}()

// TranslateGenre resolves a genre name to English.
// Hierarchical names keep only the most specific (last) segment,
// and lookup ignores case. Unknown names pass through unchanged,
// they are usually already English ("Rock", "Jazz", "Pop").
func TranslateGenre(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}

	// Keep the most specific hierarchy level.
	if idx := strings.LastIndex(name, genreSegmentSeparator); idx >= 0 {
		name = strings.TrimSpace(name[idx+len(genreSegmentSeparator):])
	}

	if translated, ok := genreTranslationsFolded[strings.ToLower(name)]; ok {
		return translated
	}

	return name
}
