package catalog

import "testing"

func TestCatalogResolvesAllKeys(t *testing.T) {
	t.Parallel()

	c := New(map[string]string{"general": "role-1", "appeals": "role-2"})

	keys := []string{"general", "discord", "staff_report", "mr_report", "alliance", "executive", "development", "appeals"}
	for _, key := range keys {
		cat, ok := c.Get(key)
		if !ok {
			t.Fatalf("category %q missing", key)
		}
		if cat.Key != key {
			t.Fatalf("category key mismatch: %q vs %q", cat.Key, key)
		}
		if cat.Name == "" || cat.Emoji == "" || cat.Color == 0 {
			t.Fatalf("category %q missing display identity: %#v", key, cat)
		}
	}

	if len(c.All()) != len(keys) {
		t.Fatalf("catalog size %d, want %d", len(c.All()), len(keys))
	}
}

func TestCatalogRoleWiring(t *testing.T) {
	t.Parallel()

	c := New(map[string]string{"general": "role-1"})

	general, _ := c.Get("general")
	if general.RoleID != "role-1" {
		t.Fatalf("general role id %q, want role-1", general.RoleID)
	}
	discord, _ := c.Get("discord")
	if discord.RoleID != "" {
		t.Fatalf("unconfigured category has role id %q", discord.RoleID)
	}
}

func TestCatalogUnknownKey(t *testing.T) {
	t.Parallel()

	c := New(nil)
	if _, ok := c.Get("billing"); ok {
		t.Fatal("unknown key resolved")
	}
}

func TestCatalogOrderIsStable(t *testing.T) {
	t.Parallel()

	c := New(nil)
	all := c.All()
	if all[0].Key != "general" || all[len(all)-1].Key != "appeals" {
		t.Fatalf("panel order changed: first=%q last=%q", all[0].Key, all[len(all)-1].Key)
	}
}
