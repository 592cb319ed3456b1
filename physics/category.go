package physics

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jakecoffman/cp"
)

// Category is a collision category bitmask. A fixture carries one or more
// categories and a mask of the categories it collides with.
type Category uint

const (
	CategoryDefault Category = 1 << iota
	CategoryPlayer
	CategoryPlayer1
	CategoryPlayer2
	CategoryPlayer3
	CategoryPlayer4
	CategoryPlayerBullet
	CategoryPlayer1Bullet
	CategoryPlayer2Bullet
	CategoryPlayer3Bullet
	CategoryPlayer4Bullet
	CategoryEnemy
	CategoryDeath
	CategoryGround
	CategoryPlatform
	CategoryIgnore

	CategoryNone Category = 0
	CategoryAll  Category = ^Category(0)
)

const MaxPlayers = 4

var ErrPlayerIndex = errors.New("physics: player index out of range")

var (
	playerCategories = [MaxPlayers]Category{CategoryPlayer1, CategoryPlayer2, CategoryPlayer3, CategoryPlayer4}
	bulletCategories = [MaxPlayers]Category{CategoryPlayer1Bullet, CategoryPlayer2Bullet, CategoryPlayer3Bullet, CategoryPlayer4Bullet}
)

var categoryNames = []struct {
	cat  Category
	name string
}{
	{CategoryDefault, "default"},
	{CategoryPlayer, "player"},
	{CategoryPlayer1, "player1"},
	{CategoryPlayer2, "player2"},
	{CategoryPlayer3, "player3"},
	{CategoryPlayer4, "player4"},
	{CategoryPlayerBullet, "player_bullet"},
	{CategoryPlayer1Bullet, "player1_bullet"},
	{CategoryPlayer2Bullet, "player2_bullet"},
	{CategoryPlayer3Bullet, "player3_bullet"},
	{CategoryPlayer4Bullet, "player4_bullet"},
	{CategoryEnemy, "enemy"},
	{CategoryDeath, "death"},
	{CategoryGround, "ground"},
	{CategoryPlatform, "platform"},
	{CategoryIgnore, "ignore"},
}

// PlayerCategory returns the categories carried by player index (1..4).
func PlayerCategory(index int) (Category, error) {
	if index < 1 || index > MaxPlayers {
		return CategoryNone, fmt.Errorf("%w: %d", ErrPlayerIndex, index)
	}
	return CategoryPlayer | playerCategories[index-1], nil
}

// PlayerBulletCategory returns the categories carried by bullets fired by
// player index (1..4).
func PlayerBulletCategory(index int) (Category, error) {
	if index < 1 || index > MaxPlayers {
		return CategoryNone, fmt.Errorf("%w: %d", ErrPlayerIndex, index)
	}
	return CategoryPlayerBullet | bulletCategories[index-1], nil
}

// ParseCategory maps a name such as "ground" or "platform" to its category.
func ParseCategory(name string) (Category, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, c := range categoryNames {
		if c.name == name {
			return c.cat, nil
		}
	}
	return CategoryNone, fmt.Errorf("physics: unknown collision category %q", name)
}

// Has reports whether c shares any bit with other.
func (c Category) Has(other Category) bool {
	return c&other != 0
}

func (c Category) String() string {
	if c == CategoryNone {
		return "none"
	}
	var parts []string
	for _, n := range categoryNames {
		if c&n.cat != 0 {
			parts = append(parts, n.name)
		}
	}
	if len(parts) == 0 {
		return fmt.Sprintf("category(%#x)", uint(c))
	}
	return strings.Join(parts, "|")
}

// MaskFor returns the collides-with mask for a fixture of category c.
func MaskFor(c Category) Category {
	switch {
	case c.Has(CategoryIgnore):
		return CategoryGround | CategoryPlatform
	case c.Has(CategoryPlayerBullet):
		return BulletMask(c, true)
	}
	return CategoryAll &^ CategoryIgnore
}

// BulletMask returns the mask for a bullet carrying shooter categories. It
// never hits its own shooter or other bullets, and optionally passes through
// ground.
func BulletMask(shooter Category, collideWithGround bool) Category {
	mask := CategoryAll &^ (CategoryIgnore | CategoryPlayerBullet | CategoryPlatform)
	for i := range MaxPlayers {
		mask &^= bulletCategories[i]
		if shooter.Has(bulletCategories[i]) || shooter.Has(playerCategories[i]) {
			mask &^= playerCategories[i]
		}
	}
	if !collideWithGround {
		mask &^= CategoryGround
	}
	return mask
}

// Filter builds the chipmunk shape filter for a fixture. Shapes sharing a
// non-zero group never collide with each other.
func Filter(c, mask Category, group uint) cp.ShapeFilter {
	return cp.ShapeFilter{Group: group, Categories: uint(c), Mask: uint(mask)}
}

func shapeCategory(s *cp.Shape) Category {
	if s == nil {
		return CategoryNone
	}
	return Category(s.Filter.Categories)
}
