package physics

import (
	"errors"
	"testing"
)

func TestPlayerCategory(t *testing.T) {
	cases := []struct {
		name    string
		index   int
		want    Category
		wantErr bool
	}{
		{"first", 1, CategoryPlayer | CategoryPlayer1, false},
		{"fourth", 4, CategoryPlayer | CategoryPlayer4, false},
		{"zero", 0, CategoryNone, true},
		{"five", 5, CategoryNone, true},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, err := PlayerCategory(c.index)
			if c.wantErr {
				if !errors.Is(err, ErrPlayerIndex) {
					t.Fatalf("expected ErrPlayerIndex, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != c.want {
				t.Fatalf("got %s, want %s", got, c.want)
			}
		})
	}
}

func TestBulletMask(t *testing.T) {
	shooter, err := PlayerBulletCategory(2)
	if err != nil {
		t.Fatal(err)
	}
	other, _ := PlayerCategory(1)
	self, _ := PlayerCategory(2)

	cases := []struct {
		name   string
		ground bool
		target Category
		hits   bool
	}{
		{"own_player_excluded", true, CategoryPlayer2, false},
		{"other_player_hit", true, CategoryPlayer1, true},
		{"enemy_hit", true, CategoryEnemy, true},
		{"other_bullets_excluded", true, CategoryPlayerBullet, false},
		{"ground_hit", true, CategoryGround, true},
		{"ground_skipped", false, CategoryGround, false},
		{"ignore_excluded", true, CategoryIgnore, false},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			mask := BulletMask(shooter, c.ground)
			if mask.Has(c.target) != c.hits {
				t.Fatalf("mask %s vs %s: hits=%v, want %v", mask, c.target, mask.Has(c.target), c.hits)
			}
		})
	}

	// the shared player bit stays in the mask so other players are still hit
	if !BulletMask(shooter, true).Has(other &^ CategoryPlayer) {
		t.Fatalf("bullet should hit player1")
	}
	if BulletMask(shooter, true).Has(self &^ CategoryPlayer) {
		t.Fatalf("bullet should not hit its shooter")
	}
}

func TestMaskFor(t *testing.T) {
	cases := []struct {
		name   string
		cat    Category
		target Category
		want   bool
	}{
		{"player_hits_ground", CategoryPlayer, CategoryGround, true},
		{"player_hits_player", CategoryPlayer, CategoryPlayer, true},
		{"player_skips_ignore", CategoryPlayer, CategoryIgnore, false},
		{"ignore_hits_ground", CategoryIgnore, CategoryGround, true},
		{"ignore_skips_player", CategoryIgnore, CategoryPlayer, false},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := MaskFor(c.cat).Has(c.target); got != c.want {
				t.Fatalf("MaskFor(%s).Has(%s) = %v, want %v", c.cat, c.target, got, c.want)
			}
		})
	}
}

func TestParseCategory(t *testing.T) {
	got, err := ParseCategory(" Platform ")
	if err != nil || got != CategoryPlatform {
		t.Fatalf("ParseCategory = %s, %v", got, err)
	}
	if _, err := ParseCategory("lava"); err == nil {
		t.Fatalf("expected error for unknown category")
	}
	if s := (CategoryGround | CategoryDeath).String(); s != "death|ground" {
		t.Fatalf("String = %q", s)
	}
}
