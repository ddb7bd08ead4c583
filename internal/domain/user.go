package domain

// UserProfile holds a worker's registration data. Role, Shop and Phone stay
// empty until the corresponding registration step completes. Profiles are
// never deleted; banning is tracked separately in the store.
type UserProfile struct {
	ID       int64
	Username string
	Role     string // canonical role token, see Roles
	Shop     string
	Lang     string
	Phone    string
}

// Languages the bot can answer in. Registration rejects anything else.
var Languages = []string{"RU", "EN", "UZ", "TJ", "KG"}

// ValidLang reports whether code is one of the supported language codes.
func ValidLang(code string) bool {
	for _, l := range Languages {
		if l == code {
			return true
		}
	}
	return false
}

// Canonical role tokens stored in profiles and used in article tags.
const (
	RoleCourier = "courier"
	RolePicker  = "picker"
)

// Roles lists every canonical role token.
var Roles = []string{RoleCourier, RolePicker}

// Shops lists the canonical shop identifiers workers register under.
var Shops = []string{"Sheremetyevskaya", "Tallinskoye"}

// Stage is a step of the registration state machine.
type Stage int

const (
	StageLanguage Stage = iota
	StagePhone
	StageRole
	StageShop
	StageMain
)

func (s Stage) String() string {
	switch s {
	case StageLanguage:
		return "language"
	case StagePhone:
		return "phone"
	case StageRole:
		return "role"
	case StageShop:
		return "shop"
	default:
		return "main"
	}
}

// RegistrationStage derives the current registration step from profile
// completeness. It is recomputed on every entry point so a returning user
// resumes where they left off instead of restarting.
func RegistrationStage(u UserProfile, exists bool) Stage {
	switch {
	case !exists || u.Lang == "":
		return StageLanguage
	case u.Phone == "":
		return StagePhone
	case u.Role == "":
		return StageRole
	case u.Shop == "":
		return StageShop
	default:
		return StageMain
	}
}
