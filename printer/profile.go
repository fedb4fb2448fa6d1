package printer

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	imgInternal "github.com/AlexStarov/escpos-netprint/image"
	utilInternal "github.com/AlexStarov/escpos-netprint/util"
)

// DefaultProfileID names the generic profile used when a lookup fails.
const DefaultProfileID = "default"

// Profile is the set of printer-model specific choices. Today that is only
// the raster command variant.
type Profile struct {
	ID          string
	Variant     imgInternal.Variant
	Description string
}

var profiles = []Profile{
	{ID: DefaultProfileID, Variant: imgInternal.VariantRaster, Description: "Generic ESC/POS printer, GS v 0 raster"},
	{ID: "TM-T20II", Variant: imgInternal.VariantRaster, Description: "Epson TM-T20II, 80 mm, 576 dots"},
	{ID: "TM-T20III", Variant: imgInternal.VariantRaster, Description: "Epson TM-T20III, 80 mm, 576 dots"},
	{ID: "TM-T88V", Variant: imgInternal.VariantRaster, Description: "Epson TM-T88V, 80 mm, 512 dots"},
	{ID: "TM-T88IV", Variant: imgInternal.VariantGraphics, Description: "Epson TM-T88IV, GS 8 L graphics"},
	{ID: "TM-U220", Variant: imgInternal.VariantColumn, Description: "Epson TM-U220 impact printer, ESC * bit image"},
	{ID: "POS-5890", Variant: imgInternal.VariantRaster, Description: "Generic 58 mm printer, 384 dots"},
}

// Profiles returns the known profiles, default first.
func Profiles() []Profile {
	out := make([]Profile, len(profiles))
	copy(out, profiles)
	return out
}

// LookupProfile finds a profile by case-insensitive ID. For an unknown or
// empty name it returns the default profile and ErrUnknownProfile.
func LookupProfile(name string) (Profile, error) {
	for _, p := range profiles {
		if strings.EqualFold(p.ID, name) {
			return p, nil
		}
	}
	return profiles[0], fmt.Errorf("%w: %q", utilInternal.ErrUnknownProfile, name)
}

// ResolveProfile is LookupProfile that downgrades a miss to a warning.
func ResolveProfile(name string, logger *zap.Logger) Profile {
	p, err := LookupProfile(name)
	if err != nil {
		ids := make([]string, 0, len(profiles))
		for _, known := range profiles {
			ids = append(ids, known.ID)
		}
		logger.Warn("Profile not found, using default profile",
			zap.String("profile", name),
			zap.String("fallback", p.ID),
			zap.Strings("known", ids),
		)
	}
	return p
}
