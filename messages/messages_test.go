package messages

import "testing"

func TestPrinterBaseLocale(t *testing.T) {
	p := New().Printer("")
	if got := p.Text(InvalidEmail); got != string(InvalidEmail) {
		t.Fatalf("expected base text, got %q", got)
	}
	if p.Locale() != BaseLocale {
		t.Fatalf("expected %s, got %s", BaseLocale, p.Locale())
	}
}

func TestPrinterTranslates(t *testing.T) {
	c := New()

	if got := c.Printer("es").Text(UnverifiedUser); got != "Usuario no verificado" {
		t.Fatalf("unexpected spanish text %q", got)
	}
	if got := c.Printer("fr-CA").Text(FailedToLogin); got != "Échec de la connexion" {
		t.Fatalf("unexpected french text %q", got)
	}
}

func TestPrinterUnknownLocaleFallsBack(t *testing.T) {
	c := New()
	for _, locale := range []string{"zz-invalid-???", "ja"} {
		if got := c.Printer(locale).Text(MagicLinkSent); got != string(MagicLinkSent) {
			t.Fatalf("locale %q: expected base text, got %q", locale, got)
		}
	}
}

func TestNilPrinter(t *testing.T) {
	var p *Printer
	if p.Text(FailedToLogin) != string(FailedToLogin) {
		t.Fatal("nil printer should return key")
	}
}
