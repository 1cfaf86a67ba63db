package inputval_test

import (
	"strings"
	"testing"

	"github.com/krcapps/orderdash/internal/app/system/inputval"
)

func TestDescription_Boundaries(t *testing.T) {
	if err := inputval.Description(strings.Repeat("a", 9)); err == nil {
		t.Error("9 characters: expected rejection")
	}
	if err := inputval.Description(strings.Repeat("a", 10)); err != nil {
		t.Errorf("10 characters: expected acceptance, got %v", err)
	}
	if err := inputval.Description(strings.Repeat("a", 500)); err != nil {
		t.Errorf("500 characters: expected acceptance, got %v", err)
	}
	if err := inputval.Description(strings.Repeat("a", 501)); err == nil {
		t.Error("501 characters: expected rejection")
	}
}

func TestImageCount(t *testing.T) {
	if err := inputval.ImageCount(0); err == nil {
		t.Error("0 images: expected rejection")
	} else if err.Message != "at least one image is required" {
		t.Errorf("message: got %q", err.Message)
	}
	for n := 1; n <= 5; n++ {
		if err := inputval.ImageCount(n); err != nil {
			t.Errorf("%d images: expected acceptance, got %v", n, err)
		}
	}
	if err := inputval.ImageCount(6); err == nil {
		t.Error("6 images: expected rejection")
	}
}

func TestImage(t *testing.T) {
	if err := inputval.Image("image/png", 1024); err != nil {
		t.Errorf("png 1KB: got %v", err)
	}
	if err := inputval.Image("image/PNG", 1024); err != nil {
		t.Errorf("content type should be case-insensitive: got %v", err)
	}
	if err := inputval.Image("image/png", inputval.MaxImageSize+1); err == nil {
		t.Error("oversized image: expected rejection")
	}
	if err := inputval.Image("image/gif", 10); err == nil {
		t.Error("gif: expected rejection")
	}
	if err := inputval.Image("application/pdf", 10); err == nil {
		t.Error("pdf: expected rejection")
	}
}

func TestRegistration(t *testing.T) {
	if err := inputval.Registration("Budi Santoso", "Riset", "budi@krc.id", "rahasia1"); err != nil {
		t.Errorf("valid registration: got %v", err)
	}
	if err := inputval.Registration("B", "Riset", "budi@krc.id", "rahasia1"); err == nil {
		t.Error("short name: expected rejection")
	}
	if err := inputval.Registration("Budi", "", "budi@krc.id", "rahasia1"); err == nil {
		t.Error("missing division: expected rejection")
	}
	if err := inputval.Registration("Budi", "Riset", "not-an-email", "rahasia1"); err == nil {
		t.Error("bad email: expected rejection")
	}
	if err := inputval.Registration("Budi", "Riset", "budi@krc.id", "12345"); err == nil {
		t.Error("short password: expected rejection")
	}
}
