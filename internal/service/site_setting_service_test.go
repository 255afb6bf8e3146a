package service

import (
	"errors"
	"testing"

	"github.com/folio/internal/db"
)

func TestSettingServiceGetSetUpsert(t *testing.T) {
	gdb := setupServiceTestDB(t)
	svc := NewSettingService(gdb, SiteMetadata{})

	if _, err := svc.Get("theme"); !errors.Is(err, ErrSettingNotFound) {
		t.Fatalf("expected ErrSettingNotFound, got %v", err)
	}

	if err := svc.Set("theme", "light"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := svc.Set("theme", "dark"); err != nil {
		t.Fatalf("overwrite: %v", err)
	}

	value, err := svc.Get("theme")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if value != "dark" {
		t.Fatalf("expected overwritten value dark, got %q", value)
	}

	var count int64
	if err := gdb.Model(&db.SiteSetting{}).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected a single row after upsert, got %d", count)
	}
}

func TestSettingServiceAllAndSetMany(t *testing.T) {
	gdb := setupServiceTestDB(t)
	svc := NewSettingService(gdb, SiteMetadata{})

	if err := svc.SetMany(map[string]string{"a": "1", "b": "2"}); err != nil {
		t.Fatalf("set many: %v", err)
	}
	all, err := svc.All()
	if err != nil {
		t.Fatalf("all: %v", err)
	}
	if len(all) != 2 || all["a"] != "1" || all["b"] != "2" {
		t.Fatalf("unexpected settings %v", all)
	}
}

func TestSettingServiceSiteMetadataOverridesDefaults(t *testing.T) {
	gdb := setupServiceTestDB(t)
	defaults := SiteMetadata{Title: "Config Title", Description: "Config Desc", URL: "https://config.example"}
	svc := NewSettingService(gdb, defaults)

	meta, err := svc.SiteMetadata()
	if err != nil {
		t.Fatalf("metadata: %v", err)
	}
	if meta != defaults {
		t.Fatalf("expected defaults, got %+v", meta)
	}

	if err := svc.Set(db.SettingKeySiteTitle, "Stored Title"); err != nil {
		t.Fatalf("set title: %v", err)
	}
	if err := svc.Set(db.SettingKeySiteURL, "https://stored.example/"); err != nil {
		t.Fatalf("set url: %v", err)
	}
	if err := svc.Set(db.SettingKeySiteDescription, "   "); err != nil {
		t.Fatalf("set description: %v", err)
	}

	meta, err = svc.SiteMetadata()
	if err != nil {
		t.Fatalf("metadata: %v", err)
	}
	if meta.Title != "Stored Title" || meta.URL != "https://stored.example" {
		t.Fatalf("expected stored values, got %+v", meta)
	}
	if meta.Description != "Config Desc" {
		t.Fatalf("blank setting should fall back to config, got %q", meta.Description)
	}
}
