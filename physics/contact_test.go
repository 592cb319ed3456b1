package physics

import "testing"

func TestContactListenersFanOut(t *testing.T) {
	cases := []struct {
		name      string
		answers   []bool
		wantSolid bool
	}{
		{"none", nil, true},
		{"all_solid", []bool{true, true}, true},
		{"first_rejects", []bool{false, true}, false},
		{"last_rejects", []bool{true, false}, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			begins, ends := 0, 0
			var ls ContactListeners
			for _, a := range c.answers {
				ls = append(ls, ContactFuncs{
					Begin: func(Contact) bool { begins++; return a },
					End:   func(Contact) { ends++ },
				})
			}
			ls = append(ls, nil)
			if got := ls.BeginContact(Contact{}); got != c.wantSolid {
				t.Fatalf("solid=%v, want %v", got, c.wantSolid)
			}
			ls.EndContact(Contact{})
			if begins != len(c.answers) || ends != len(c.answers) {
				t.Fatalf("every listener should see the contact: begins=%d ends=%d", begins, ends)
			}
		})
	}
}
