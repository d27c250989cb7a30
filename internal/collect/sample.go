package collect

import (
	"context"
	"fmt"
	"strings"
)

// SampleCollector serves a built-in corpus. It is the fallback of last
// resort: it never fails and always returns documents.
type SampleCollector struct{}

// NewSampleCollector creates the fallback sample collector.
func NewSampleCollector() *SampleCollector {
	return &SampleCollector{}
}

// Name identifies the source.
func (c *SampleCollector) Name() string { return "SampleData" }

// Validate always succeeds; the sample data is compiled in.
func (c *SampleCollector) Validate() error { return nil }

type sampleChampion struct {
	name        string
	role        string
	description string
	q, w, e, r  string
	playstyle   string
}

var sampleChampions = []sampleChampion{
	{
		name:        "Ahri",
		role:        "Mage/Assassin",
		description: "Ahri is a mobile mage-assassin hybrid who uses her charm and mobility to outplay opponents.",
		q:           "Orb of Deception - Sends out an orb that deals magic damage on the way out and true damage on the way back.",
		w:           "Fox-Fire - Summons three fox-fires that target nearby enemies.",
		e:           "Charm - Blows a kiss that charms the first enemy hit, causing them to walk harmlessly towards Ahri.",
		r:           "Spirit Rush - Dashes forward and fires essence bolts, can be cast up to 3 times.",
		playstyle:   "Ahri excels at picking off isolated targets and escaping dangerous situations with her ultimate.",
	},
	{
		name:        "Yasuo",
		role:        "Fighter/Assassin",
		description: "Yasuo is a melee carry who relies on critical strikes and mobility to dominate teamfights.",
		q:           "Steel Tempest - Thrusts forward, dealing damage. After two casts, the third creates a tornado.",
		w:           "Wind Wall - Creates a wall that blocks all enemy projectiles for 4 seconds.",
		e:           "Sweeping Blade - Dashes through a target enemy, dealing damage. Cannot be used on the same target for a few seconds.",
		r:           "Last Breath - Blinks to an airborne enemy champion, dealing damage and keeping them in the air.",
		playstyle:   "Yasuo requires precise positioning and timing to maximize his damage output and survivability.",
	},
	{
		name:        "Jinx",
		role:        "Marksman",
		description: "Jinx is a hyper-carry marksman who excels at dealing massive area damage in teamfights.",
		q:           "Switcheroo! - Switches between Pow-Pow (machine gun) and Fishbones (rocket launcher).",
		w:           "Zap! - Fires a shock blast that slows and reveals the first enemy hit.",
		e:           "Flame Chompers! - Throws three chompers that explode when enemies step on them.",
		r:           "Super Mega Death Rocket! - Fires a global rocket that deals more damage the farther it travels.",
		playstyle:   "Jinx scales incredibly well into late game and can single-handedly win teamfights with proper positioning.",
	},
	{
		name:        "Thresh",
		role:        "Support",
		description: "Thresh is a tanky support who excels at crowd control and protecting allies.",
		q:           "Death Sentence - Throws his scythe, pulling himself and the enemy closer together.",
		w:           "Dark Passage - Throws a lantern that allies can click to dash to Thresh.",
		e:           "Flay - Sweeps his chain, knocking enemies in the direction of the swing.",
		r:           "The Box - Creates walls of spectral energy that slow and damage enemies who pass through.",
		playstyle:   "Thresh is a playmaking support who can initiate fights and save teammates with his utility.",
	},
	{
		name:        "Lee Sin",
		role:        "Fighter/Assassin",
		description: "Lee Sin is a highly mobile jungler known for his early game pressure and outplay potential.",
		q:           "Sonic Wave / Resonating Strike - Fires a skillshot that marks enemies, can recast to dash to them.",
		w:           "Safeguard / Iron Will - Dashes to an ally or ward, gaining a shield. Can activate for lifesteal and spell vamp.",
		e:           "Tempest / Cripple - Slams the ground, dealing damage and revealing enemies. Can recast to slow.",
		r:           "Dragon's Rage - Kicks an enemy champion away, dealing damage and knocking back all enemies hit.",
		playstyle:   "Lee Sin requires high mechanical skill and game knowledge to maximize his impact throughout the game.",
	},
}

const sampleMechanics = `League of Legends Game Mechanics:

Laning Phase: The early game phase where players farm minions and trade with opponents in their assigned lanes.
Objectives: Important map locations like Dragon, Baron Nashor, and Rift Herald that provide team-wide benefits.
Teamfighting: Coordinated group combat where teams fight for objectives or map control.
Positioning: Critical skill of placing your champion in optimal locations during fights to maximize effectiveness while minimizing risk.
Vision Control: Using wards and sweepers to control map visibility and prevent ganks.`

const sampleItems = `Item Builds in League of Legends:

Core Items: Essential items that define a champion's playstyle and power spikes.
Situational Items: Items built based on the enemy team composition and game state.
Boots: Movement speed items that also provide combat stats. Different types for different roles.
Mythic Items: Powerful items that define a champion's build path and provide unique effects.
Legendary Items: High-tier items that complement the mythic item choice.`

const sampleRanked = `Ranked System:

Ranked Tiers: Iron, Bronze, Silver, Gold, Platinum, Emerald, Diamond, Master, Grandmaster, Challenger
LP (League Points): Points earned or lost based on match outcomes
Promotion Series: Best-of series to advance to the next tier
MMR (Matchmaking Rating): Hidden rating that determines matchmaking`

// Collect returns the built-in sample corpus: five champions plus general
// game knowledge documents.
func (c *SampleCollector) Collect(ctx context.Context) ([]Document, error) {
	docs := make([]Document, 0, len(sampleChampions)+3)

	for _, ch := range sampleChampions {
		content := fmt.Sprintf(`Champion: %s
Role: %s
Description: %s

Abilities:
- Q: %s
- W: %s
- E: %s
- R: %s

Playstyle: %s`, ch.name, ch.role, ch.description, ch.q, ch.w, ch.e, ch.r, ch.playstyle)

		docs = append(docs, Document{
			Content: strings.TrimSpace(content),
			Metadata: map[string]any{
				MetaChampion: ch.name,
				MetaRole:     ch.role,
				MetaType:     "champion",
				MetaSource:   "sample",
			},
		})
	}

	for _, g := range []struct {
		content string
		typ     string
	}{
		{sampleMechanics, "game_mechanics"},
		{sampleItems, "items"},
		{sampleRanked, "ranked"},
	} {
		docs = append(docs, Document{
			Content:  g.content,
			Metadata: map[string]any{MetaType: g.typ, MetaSource: "sample"},
		})
	}

	return docs, nil
}
