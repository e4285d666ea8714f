package epg

import (
	"strings"
	"testing"
	"time"

	"golang.org/x/net/html"
)

func parseFixture(t *testing.T, body string) *html.Node {
	t.Helper()
	root, err := html.Parse(strings.NewReader(body))
	if err != nil {
		t.Fatalf("parse fixture: %v", err)
	}
	return root
}

func TestParseMeuGuiaMidnightCrossing(t *testing.T) {
	const fixture = `<html><body><ul>
<li class="mw"><time>22:00</time><h2>Jornal da Noite</h2></li>
<li class="mw"><time>23:30</time><h2>Filme</h2></li>
<li class="mw"><time>01:00</time><h2>Madrugada</h2></li>
</ul></body></html>`

	base := time.Date(2026, 3, 10, 22, 30, 0, 0, time.UTC)
	programs, err := parseMeuGuia(parseFixture(t, fixture), "REDEGLOBO", base)
	if err != nil {
		t.Fatalf("parseMeuGuia: %v", err)
	}
	if len(programs) != 3 {
		t.Fatalf("expected 3 programs, got %d", len(programs))
	}

	// The 01:00 entry rolls over to the next day.
	want := time.Date(2026, 3, 11, 1, 0, 0, 0, time.UTC)
	if !programs[2].Start.Equal(want) {
		t.Fatalf("expected rollover start %v, got %v", want, programs[2].Start)
	}
	// The last program gets the fixed open-ended tail.
	if got := programs[2].End.Sub(programs[2].Start); got != openEndedProgramLength {
		t.Fatalf("expected open-ended tail %v, got %v", openEndedProgramLength, got)
	}
	// Intermediate ends chain to the next start.
	if !programs[0].End.Equal(programs[1].Start) {
		t.Fatal("program 0 end does not chain to program 1 start")
	}
}

func TestParseMeuGuiaRejectsEmptyListing(t *testing.T) {
	base := time.Now()
	if _, err := parseMeuGuia(parseFixture(t, "<html><body><p>manutenção</p></body></html>"), "X", base); err == nil {
		t.Fatal("expected error for a page with no listing rows")
	}

	// Rows present but nothing parsable.
	const broken = `<html><body><li class="mw"><time>??</time><h2>X</h2></li></body></html>`
	if _, err := parseMeuGuia(parseFixture(t, broken), "X", base); err == nil {
		t.Fatal("expected error for unparsable rows")
	}
}

func TestParseMiTV(t *testing.T) {
	const fixture = `<html><body><ul>
<li><span class="time">08:00</span><h2 class="title">Bom Dia</h2></li>
<li><span class="time">10:30</span><h2>Sem Classe</h2></li>
</ul></body></html>`

	base := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	programs, err := parseMiTV(parseFixture(t, fixture), "rede-globo", base)
	if err != nil {
		t.Fatalf("parseMiTV: %v", err)
	}
	if len(programs) != 2 {
		t.Fatalf("expected 2 programs, got %d", len(programs))
	}
	if programs[0].Title != "Bom Dia" {
		t.Fatalf("unexpected title: %q", programs[0].Title)
	}
	// The classless <h2> fallback still yields a title.
	if programs[1].Title != "Sem Classe" {
		t.Fatalf("unexpected fallback title: %q", programs[1].Title)
	}
	if !programs[0].End.Equal(programs[1].Start) {
		t.Fatal("end does not chain to next start")
	}
}

func TestParseGatoTV(t *testing.T) {
	const fixture = `<html><body><table>
<tr><td><time>23:00</time></td><td><time>23:45</time></td><td>Noite Adentro</td></tr>
<tr><td><time>23:45</time></td><td><time>00:30</time></td><td>Virada</td></tr>
</table></body></html>`

	base := time.Date(2026, 3, 10, 23, 10, 0, 0, time.UTC)
	programs, err := parseGatoTV(parseFixture(t, fixture), "rede_globo", base)
	if err != nil {
		t.Fatalf("parseGatoTV: %v", err)
	}
	if len(programs) != 2 {
		t.Fatalf("expected 2 programs, got %d", len(programs))
	}

	// The second row ends past midnight: end < start rolls the end forward.
	wantEnd := time.Date(2026, 3, 11, 0, 30, 0, 0, time.UTC)
	if !programs[1].End.Equal(wantEnd) {
		t.Fatalf("expected end %v, got %v", wantEnd, programs[1].End)
	}
	if programs[0].Title != "Noite Adentro" {
		t.Fatalf("unexpected title: %q", programs[0].Title)
	}
}

func TestParseClock(t *testing.T) {
	base := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	got, ok := parseClock(" 07:05 ", base)
	if !ok {
		t.Fatal("expected 07:05 to parse")
	}
	if want := time.Date(2026, 3, 10, 7, 5, 0, 0, time.UTC); !got.Equal(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}

	for _, bad := range []string{"", "7", "25:00", "12:60", "ab:cd"} {
		if _, ok := parseClock(bad, base); ok {
			t.Fatalf("expected %q to fail", bad)
		}
	}
}

func TestSourceForPriority(t *testing.T) {
	// globo exists in all three code tables; the first table wins.
	src, ok := SourceFor("globo")
	if !ok {
		t.Fatal("expected a source for globo")
	}
	if src.Provider != ProviderMeuGuia {
		t.Fatalf("expected meuguia to win, got %s", src.Provider)
	}

	if _, ok := SourceFor("canal-desconhecido"); ok {
		t.Fatal("expected no source for unknown channel")
	}
}
