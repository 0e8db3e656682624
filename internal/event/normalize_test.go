package event

import (
	"testing"
	"time"
)

func TestNormalize_ContactChannels(t *testing.T) {
	tests := []struct {
		name        string
		contact     Contact
		wantEmail   bool
		wantPhone   bool
		wantWebsite bool
	}{
		{
			name:        "all valid",
			contact:     Contact{Email: "info@club.es", Phone: "915551234", Website: "https://club.es"},
			wantEmail:   true,
			wantPhone:   true,
			wantWebsite: true,
		},
		{
			name:    "sentinels",
			contact: Contact{Email: "None", Phone: "None", Website: "None"},
		},
		{
			name:    "shape checks fail",
			contact: Contact{Email: "info.club.es", Phone: "12345678", Website: "www.club.es"},
		},
		{
			name:      "nine digit phone",
			contact:   Contact{Phone: "600123456"},
			wantPhone: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := Normalize(&Record{Contact: tt.contact})
			if v.HasEmail != tt.wantEmail {
				t.Errorf("HasEmail = %v, want %v", v.HasEmail, tt.wantEmail)
			}
			if v.HasPhone != tt.wantPhone {
				t.Errorf("HasPhone = %v, want %v", v.HasPhone, tt.wantPhone)
			}
			if v.HasWebsite != tt.wantWebsite {
				t.Errorf("HasWebsite = %v, want %v", v.HasWebsite, tt.wantWebsite)
			}
		})
	}
}

func TestNormalize_DateState(t *testing.T) {
	native := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		date Date
		want DateState
	}{
		{"absent", Date{}, DateMissing},
		{"empty string", Date{Present: false, Raw: ""}, DateMissing},
		{"blank string", Date{Present: true, Raw: "   "}, DateMissing},
		{"iso string", Date{Present: true, Raw: "2026-09-01"}, DateValid},
		{"native", Date{Present: true, Native: true, Time: native}, DateValid},
		{"garbage", Date{Present: true, Raw: "Por determinar"}, DateInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := Normalize(&Record{Date: tt.date})
			if v.DateState != tt.want {
				t.Errorf("DateState = %v, want %v", v.DateState, tt.want)
			}
			if tt.want == DateValid && v.ParsedDate.IsZero() {
				t.Error("ParsedDate should be set for valid dates")
			}
		})
	}
}

func TestNormalize_NilAndMissingFields(t *testing.T) {
	if v := Normalize(nil); v.TitleEs != "" || v.City != "" {
		t.Errorf("Normalize(nil) = %+v, want zero view", v)
	}

	v := Normalize(FromDocument(map[string]interface{}{"_id": "x1"}))
	if v.TitleEs != "" || v.City != "" || v.Region != "" {
		t.Errorf("Normalize() = %+v, want empty strings", v)
	}
	if v.DateState != DateMissing {
		t.Errorf("DateState = %v, want missing", v.DateState)
	}
}
