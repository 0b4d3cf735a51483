// Package messages holds the user-visible alert texts flows dispatch, with
// translations selected by locale.
package messages

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Key is an alert text in the base locale. It doubles as the catalog key.
type Key string

const (
	InvalidEmail           Key = "Please input valid email address"
	InvalidPhone           Key = "Please input valid phone number"
	InvalidEmailOrPhone    Key = "Please input valid email or phone number"
	UnverifiedUser         Key = "Unverified user"
	FailedToLogin          Key = "Failed to login"
	FailedToLoadUserData   Key = "Failed to load user data"
	FailedToUpdateSettings Key = "Failed to update user settings"
	MagicLinkSent          Key = "Login Magic Link was sent. Please check your Email or SMS."
	UnsupportedProvider    Key = "Unsupported login provider"
)

// BaseLocale is the locale keys are written in.
const BaseLocale = "en-US"

var translations = map[language.Tag]map[Key]string{
	language.Spanish: {
		InvalidEmail:           "Introduce una dirección de correo válida",
		InvalidPhone:           "Introduce un número de teléfono válido",
		InvalidEmailOrPhone:    "Introduce un correo o número de teléfono válido",
		UnverifiedUser:         "Usuario no verificado",
		FailedToLogin:          "No se pudo iniciar sesión",
		FailedToLoadUserData:   "No se pudieron cargar los datos del usuario",
		FailedToUpdateSettings: "No se pudo actualizar la configuración",
		MagicLinkSent:          "Se envió el enlace mágico. Revisa tu correo o SMS.",
		UnsupportedProvider:    "Proveedor de inicio de sesión no admitido",
	},
	language.French: {
		InvalidEmail:           "Veuillez saisir une adresse e-mail valide",
		InvalidPhone:           "Veuillez saisir un numéro de téléphone valide",
		InvalidEmailOrPhone:    "Veuillez saisir un e-mail ou un numéro de téléphone valide",
		UnverifiedUser:         "Utilisateur non vérifié",
		FailedToLogin:          "Échec de la connexion",
		FailedToLoadUserData:   "Échec du chargement des données utilisateur",
		FailedToUpdateSettings: "Échec de la mise à jour des paramètres",
		MagicLinkSent:          "Le lien magique a été envoyé. Vérifiez vos e-mails ou SMS.",
		UnsupportedProvider:    "Fournisseur de connexion non pris en charge",
	},
}

// Catalog resolves alert texts for a locale.
type Catalog struct {
	cat       *catalog.Builder
	supported []language.Tag
	matcher   language.Matcher
}

// New builds the catalog with every bundled translation.
func New() *Catalog {
	base := language.AmericanEnglish
	b := catalog.NewBuilder(catalog.Fallback(base))
	supported := []language.Tag{base}
	for tag, msgs := range translations {
		for key, text := range msgs {
			// Keys carry no format verbs; SetString only fails on malformed input.
			_ = b.SetString(tag, string(key), text)
		}
		supported = append(supported, tag)
	}
	return &Catalog{
		cat:       b,
		supported: supported,
		matcher:   language.NewMatcher(supported),
	}
}

// Printer returns a printer for the closest supported match of locale.
// Unknown or empty locales fall back to [BaseLocale].
func (c *Catalog) Printer(locale string) *Printer {
	tag := c.supported[0]
	if locale = strings.TrimSpace(locale); locale != "" {
		if parsed, err := language.Parse(locale); err == nil {
			_, idx, conf := c.matcher.Match(parsed)
			if conf != language.No {
				tag = c.supported[idx]
			}
		}
	}
	return &Printer{
		tag: tag,
		p:   message.NewPrinter(tag, message.Catalog(c.cat)),
	}
}

// Printer renders keys in one locale.
type Printer struct {
	tag language.Tag
	p   *message.Printer
}

// Text returns the localized text for k.
func (p *Printer) Text(k Key) string {
	if p == nil || p.p == nil {
		return string(k)
	}
	return p.p.Sprintf(string(k))
}

// Locale reports the locale the printer resolved to.
func (p *Printer) Locale() string {
	if p == nil {
		return BaseLocale
	}
	return p.tag.String()
}
