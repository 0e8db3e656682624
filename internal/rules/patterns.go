package rules

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const (
	months   = `enero|febrero|marzo|abril|mayo|junio|julio|agosto|septiembre|octubre|noviembre|diciembre`
	weekdays = `lunes|martes|miércoles|miercoles|jueves|viernes|sábado|sabado|domingo`
)

// calendarPatterns match titles that are calendar page chrome rather than events.
var calendarPatterns = compileAll(
	`(?i)^Calendario`,
	`(?i)^Filtrar por`,
	`(?i)^DÍA\s+PRUEBA`,
	`(?i)^Eventos anteriores`,
	`(?i)^Año:`,
	`^\d{4}$`,
	`(?i)^(`+months+`)$`,
	`(?i)^(`+weekdays+`)$`,
	`(?i)^(Todos|Adultos|Menores)$`,
	`(?i)^(calendario|eventos|competiciones|liga|temporada|campeonato)$`,
	`(?i)^(natación|natacion|swimming|triatlón|triatlon|duatlón|duatlon)$`,
	`(?i)^(infantil|cadete|junior|absoluto|master|senior)$`,
	`(?i)^(masculino|femenino|mixto)$`,
	`(?i)^(primera|segunda|tercera|cuarta|división|division)$`,
)

// newsPatterns match announcements published alongside the calendar.
var newsPatterns = compileAll(
	`(?i)Clasificaciones.*Resultados`,
	`(?i)Convocatoria.*Asamblea`,
	`(?i)ICAN Triathlon.*inscripción cubierta`,
	`(?i)^Curso de`,
	`(?i)^TOMA DE TIEMPOS`,
)

// suspiciousPatterns match scraping garbage: administrative headers, date
// headers, calendar widgets and event detail blocks captured as a name.
var suspiciousPatterns = compileAll(
	`(?i)^MASTER\s*-\s*Etapa`,
	`(?i)^Etapa\s+FINAL`,
	`(?i)^Liga\s*$`,
	`(?i)Calendario\s+Reuniones`,
	`(?i)Condiciones\s+generales`,
	`(?i)Ya a la venta`,
	`(?i)^suspendida$`,
	`(?i)TOMA DE TIEMPOS`,
	`(?i)^(`+months+`)\s*\d*$`,
	`(?i)^\d+:\d+\s+(am|pm)\s*-\s*\d+:\d+\s+(am|pm)`,
	`eventos?,`,
	`Normativa \|`,
	`Listado Inscritos`,
	`SUMARIO FINAL`,
	`Calentamiento`,
)

// genericCalendarURL matches a website that only points at a federation calendar page.
var genericCalendarURL = regexp.MustCompile(`/calendario/?$`)

func compileAll(exprs ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(exprs))
	for i, expr := range exprs {
		out[i] = regexp.MustCompile(expr)
	}
	return out
}

func matchesAny(patterns []*regexp.Regexp, s string) bool {
	for _, p := range patterns {
		if p.MatchString(s) {
			return true
		}
	}
	return false
}

// looksLikeCalendarMarkup catches "10:00 am @ Piscina ... 12:00 pm" style widget text.
func looksLikeCalendarMarkup(title string) bool {
	return strings.Contains(title, "@") && strings.Contains(title, "am") && strings.Contains(title, "pm")
}

// hasScrapingArtifacts reports literal tabs or blank lines left by HTML scraping.
func hasScrapingArtifacts(title string) bool {
	return strings.Contains(title, "\t") || strings.Contains(title, "\n\n")
}

// hasMarkup reports whether title still contains HTML elements. The title is
// parsed as an HTML fragment; any element under head or body means tags
// survived scraping.
func hasMarkup(title string) bool {
	if !strings.Contains(title, "<") {
		return false
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(title))
	if err != nil {
		return false
	}
	return doc.Find("head *, body *").Length() > 0
}
