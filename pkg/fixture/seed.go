package fixture

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultCustomSubscription is the special subscription user filters go to.
const DefaultCustomSubscription = "~user~786254"

// Seed is the data a fresh background starts from.
type Seed struct {
	Filters            []string `yaml:"filters"`
	Subscriptions      []string `yaml:"subscriptions"`
	CustomSubscription string   `yaml:"customSubscription,omitempty"`
	Info               *Info    `yaml:"info,omitempty"`
}

// DefaultSeed returns the built-in filters and subscriptions.
func DefaultSeed() Seed {
	return Seed{
		Filters: []string{
			"@@||alternate.de^$document",
			"@@||der.postillion.com^$document",
			"@@||taz.de^$document",
			"@@||amazon.de^$document",
			"||biglemon.am/bg_poster/banner.jpg",
			"winfuture.de###header_logo_link",
			"###WerbungObenRechts10_GesamtDIV",
			"###WerbungObenRechts8_GesamtDIV",
			"###WerbungObenRechts9_GesamtDIV",
			"###WerbungUntenLinks4_GesamtDIV",
			"###WerbungUntenLinks7_GesamtDIV",
			"###WerbungUntenLinks8_GesamtDIV",
			"###WerbungUntenLinks9_GesamtDIV",
			"###Werbung_Sky",
			"###Werbung_Wide",
			"###__ligatus_placeholder__",
			"###ad-bereich1-08",
			"###ad-bereich1-superbanner",
			"###ad-bereich2-08",
			"###ad-bereich2-skyscrapper",
		},
		Subscriptions: []string{
			"https://easylist-downloads.adblockplus.org/easylistgermany+easylist.txt",
			"https://easylist-downloads.adblockplus.org/exceptionrules.txt",
			"https://easylist-downloads.adblockplus.org/fanboy-social.txt",
			DefaultCustomSubscription,
		},
		CustomSubscription: DefaultCustomSubscription,
	}
}

// LoadSeed reads a YAML seed file. Sections left out of the file keep their
// defaults; an empty path returns DefaultSeed.
func LoadSeed(path string) (Seed, error) {
	if path == "" {
		return DefaultSeed(), nil
	}

	f, err := os.Open(path)
	if err != nil {
		return Seed{}, fmt.Errorf("fixture: open seed: %w", err)
	}
	defer f.Close()

	return DecodeSeed(f)
}

// DecodeSeed is LoadSeed for an already open reader.
func DecodeSeed(r io.Reader) (Seed, error) {
	var in Seed
	if err := yaml.NewDecoder(r).Decode(&in); err != nil && err != io.EOF {
		return Seed{}, fmt.Errorf("fixture: decode seed: %w", err)
	}

	out := DefaultSeed()
	if in.Filters != nil {
		out.Filters = in.Filters
	}
	if in.Subscriptions != nil {
		out.Subscriptions = in.Subscriptions
	}
	if in.CustomSubscription != "" {
		out.CustomSubscription = in.CustomSubscription
	}
	out.Info = in.Info
	return out, nil
}

// Encode writes s as YAML.
func (s Seed) Encode(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(s); err != nil {
		return fmt.Errorf("fixture: encode seed: %w", err)
	}
	return enc.Close()
}
