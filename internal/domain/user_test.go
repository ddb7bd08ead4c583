package domain

import "testing"

func TestRegistrationStage(t *testing.T) {
	full := UserProfile{ID: 1, Lang: "EN", Phone: "+4790000001", Role: RoleCourier, Shop: "Tallinskoye"}

	cases := []struct {
		name   string
		u      UserProfile
		exists bool
		want   Stage
	}{
		{"unknown user", UserProfile{}, false, StageLanguage},
		{"known but empty", UserProfile{ID: 1}, true, StageLanguage},
		{"lang only", UserProfile{ID: 1, Lang: "EN"}, true, StagePhone},
		{"lang and phone", UserProfile{ID: 1, Lang: "EN", Phone: "+4790000001"}, true, StageRole},
		{"missing shop", UserProfile{ID: 1, Lang: "EN", Phone: "+4790000001", Role: RolePicker}, true, StageShop},
		{"complete", full, true, StageMain},
		// Later fields never matter before earlier ones are filled.
		{"role without lang", UserProfile{ID: 1, Role: RoleCourier, Shop: "Tallinskoye"}, true, StageLanguage},
		{"shop without phone", UserProfile{ID: 1, Lang: "RU", Shop: "Sheremetyevskaya"}, true, StagePhone},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := RegistrationStage(tc.u, tc.exists); got != tc.want {
				t.Fatalf("RegistrationStage(%+v, %v) = %v, want %v", tc.u, tc.exists, got, tc.want)
			}
		})
	}
}

func TestValidLang(t *testing.T) {
	for _, l := range Languages {
		if !ValidLang(l) {
			t.Errorf("ValidLang(%q) = false", l)
		}
	}
	for _, l := range []string{"", "en", "DE", "RUS"} {
		if ValidLang(l) {
			t.Errorf("ValidLang(%q) = true", l)
		}
	}
}
