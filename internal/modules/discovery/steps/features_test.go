package steps

import (
	"reflect"
	"testing"
)

func TestNormalizeFeatures(t *testing.T) {
	got := NormalizeFeatures([]string{
		"real-time gps tracking",
		"api access for partners",
		"sso login",
		"export reports to pdf",
		"  ",
		"ai-powered demand forecasting",
	})
	want := []string{
		"Real-Time GPS Tracking",
		"API Access for Partners",
		"SSO Login",
		"Export Reports to PDF",
		"AI-Powered Demand Forecasting",
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v want %v", got, want)
	}
}

func TestNormalizeFeaturesHealsWrappedPhrases(t *testing.T) {
	got := NormalizeFeatures([]string{"real-\ntime fleet map"})
	want := []string{"Realtime Fleet Map"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v want %v", got, want)
	}
}

func TestNormalizeFeaturesSplitsBlobEntries(t *testing.T) {
	got := NormalizeFeatures([]string{
		"login, csv export\n- audit log",
		"• real-time alerts\n* driver scorecards",
	})
	want := []string{
		"Login",
		"CSV Export",
		"Audit Log",
		"Real-Time Alerts",
		"Driver Scorecards",
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v want %v", got, want)
	}
}

func TestNormalizeFeaturesPreservesExistingCasing(t *testing.T) {
	got := NormalizeFeatures([]string{"PostgreSQL backups", "OAuth sign-in"})
	want := []string{"PostgreSQL Backups", "OAuth Sign-In"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v want %v", got, want)
	}
}

func TestNormalizeFeaturesIdempotent(t *testing.T) {
	first := NormalizeFeatures([]string{
		"live dispatch board with AI routing",
		"csv export",
		"role-based access control",
	})
	second := NormalizeFeatures(first)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("not idempotent: %v then %v", first, second)
	}
}
