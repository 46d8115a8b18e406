package gamedata

// =============================================================================
// ABILITY SYSTEM DESIGN
// =============================================================================
//
// Overview:
// ---------
// Every collected item carries at most one ability. Abilities are pure data:
// a category, a trigger and a modifier bundle. They are defined in
// abilities.json and loaded once at startup; nothing mutates them afterwards.
//
// Core Concepts:
// --------------
//
// 1. Category - What kind of ability it is (drives display colour/icon):
//    - offensive, defensive, utility, debuff, special
//
// 2. Trigger - When the ability is evaluated:
//    - battleStart: once, before the first turn
//    - passive: permanent stat changes applied at battle start
//    - onAttack / firstAttack: while resolving the owner's attacks
//    - onHit / firstHit / afterHit: while the owner is being hit
//    - onTurn: at the start of each of the owner's turns
//    - lowHp: one-shot threshold effects checked at turn start
//    - onKill / onDeath / onFatalHit / onAllyDeath: lifecycle events
//    - turnManipulation: extra attacks and skipped turns
//
// 3. Modifier - A typed bundle with one optional field per understood key.
//    A zero value means "not present". Keys the engine does not understand
//    are dropped while decoding, so new abilities can be added as data rows
//    and only grow engine code when they need a new mechanic.
//
// JSON Schema:
// ------------
// {
//   "id": 2,
//   "name": "Critical Eye",
//   "description": "20% chance to deal double damage",
//   "category": "offensive",
//   "trigger": "onAttack",
//   "modifier": { "critChance": 0.2, "critMulti": 2 }
// }
//
// Some keys change meaning with the trigger: attackGain is per turn for
// onTurn and per kill for onKill, healPercent is a battle-start heal for
// battleStart and a low-HP heal for lowHp, attackPercent is a permanent
// bonus for passive and a threshold bonus for lowHp.

// Category classifies an ability for display.
type Category string

const (
	CategoryOffensive Category = "offensive"
	CategoryDefensive Category = "defensive"
	CategoryUtility   Category = "utility"
	CategoryDebuff    Category = "debuff"
	CategorySpecial   Category = "special"
)

// Trigger describes when an ability fires.
type Trigger string

const (
	TriggerBattleStart      Trigger = "battleStart"
	TriggerOnAttack         Trigger = "onAttack"
	TriggerOnHit            Trigger = "onHit"
	TriggerOnTurn           Trigger = "onTurn"
	TriggerOnKill           Trigger = "onKill"
	TriggerOnDeath          Trigger = "onDeath"
	TriggerOnFatalHit       Trigger = "onFatalHit"
	TriggerPassive          Trigger = "passive"
	TriggerFirstAttack      Trigger = "firstAttack"
	TriggerFirstHit         Trigger = "firstHit"
	TriggerAfterHit         Trigger = "afterHit"
	TriggerTurnManipulation Trigger = "turnManipulation"
	TriggerActive           Trigger = "active"
	TriggerLowHP            Trigger = "lowHp"
	TriggerOnAllyDeath      Trigger = "onAllyDeath"
)

// Modifier is the effect bundle of an ability.
type Modifier struct {
	// Attacker pipeline
	FlatDamage       float64 `json:"flatDamage,omitempty"`
	DamageBonus      float64 `json:"damageBonus,omitempty"`
	Uses             int     `json:"uses,omitempty"` // per-battle cap for damageBonus, damageReduce and healPercent
	CritChance       float64 `json:"critChance,omitempty"`
	CritMulti        float64 `json:"critMulti,omitempty"`
	ExecuteThreshold float64 `json:"executeThreshold,omitempty"`
	ExecuteMulti     float64 `json:"executeMulti,omitempty"`
	DoubleChance     float64 `json:"doubleChance,omitempty"`
	LuckyChance      float64 `json:"luckyChance,omitempty"`
	LuckyMulti       float64 `json:"luckyMulti,omitempty"`
	GambleChance     float64 `json:"gambleChance,omitempty"`
	LifeSteal        float64 `json:"lifeSteal,omitempty"`
	VampireHeal      float64 `json:"vampireHeal,omitempty"`
	SelfDamage       int     `json:"selfDamage,omitempty"`
	DamageGain       int     `json:"damageGain,omitempty"`

	// Defender pipeline
	DodgeChance   float64 `json:"dodgeChance,omitempty"`
	BlockFirst    bool    `json:"blockFirst,omitempty"`
	DamageReduce  float64 `json:"damageReduce,omitempty"`
	FlatReduction int     `json:"flatReduction,omitempty"`
	DamageCap     float64 `json:"damageCap,omitempty"`
	ParryChance   float64 `json:"parryChance,omitempty"`
	ParryReduce   float64 `json:"parryReduce,omitempty"`
	ThornsDamage  float64 `json:"thornsDamage,omitempty"`

	// Outgoing damage shaping before the pipeline
	StackingDamage    int     `json:"stackingDamage,omitempty"`
	ChargeEvery       int     `json:"chargeEvery,omitempty"`
	ChargeMulti       float64 `json:"chargeMulti,omitempty"`
	PunchMulti        float64 `json:"punchMulti,omitempty"`
	AfterMulti        float64 `json:"afterMulti,omitempty"`
	FullHPBonus       float64 `json:"fullHpBonus,omitempty"`
	FinisherBonus     float64 `json:"finisherBonus,omitempty"`
	DamagePenalty     float64 `json:"damagePenalty,omitempty"`
	AttackEveryNTurns int     `json:"attackEveryNTurns,omitempty"`
	DamageMultiplier  float64 `json:"damageMultiplier,omitempty"`

	// Passive stat changes
	AttackFlat    int     `json:"attackFlat,omitempty"`
	AttackPercent float64 `json:"attackPercent,omitempty"`
	AttackMod     float64 `json:"attackMod,omitempty"`
	HPFlat        int     `json:"hpFlat,omitempty"`
	HPPercent     float64 `json:"hpPercent,omitempty"`
	HPMod         float64 `json:"hpMod,omitempty"`
	AllStats      float64 `json:"allStats,omitempty"`
	StatPenalty   float64 `json:"statPenalty,omitempty"`
	DodgeFlat     float64 `json:"dodgeFlat,omitempty"`

	// Battle start
	Shield          int     `json:"shield,omitempty"`
	ShieldAmount    int     `json:"shieldAmount,omitempty"`
	HealPercent     float64 `json:"healPercent,omitempty"`
	SkipTurn        int     `json:"skipTurn,omitempty"`
	SkipTurns       int     `json:"skipTurns,omitempty"`
	DelayTurns      int     `json:"delayTurns,omitempty"`
	BideSkipTurns   int     `json:"bideSkipTurns,omitempty"`
	DamageMulti     float64 `json:"damageMulti,omitempty"`
	BideDamageMulti float64 `json:"bideDamageMulti,omitempty"`
	StatBoost       float64 `json:"statBoost,omitempty"`
	FreeAttacks     int     `json:"freeAttacks,omitempty"`
	ExtraAttacks    int     `json:"extraAttacks,omitempty"`
	ExtraTurnFirst  bool    `json:"extraTurnFirstRound,omitempty"`
	ImmortalTurns   int     `json:"immortalTurns,omitempty"`
	DodgeFirst      bool    `json:"dodgeFirst,omitempty"`
	MirrorStats     bool    `json:"mirrorStats,omitempty"`
	Equilibrium     bool    `json:"equilibrium,omitempty"`
	FluxHP          bool    `json:"fluxHp,omitempty"`

	// Ability manipulation at battle start
	CopyAbility    bool `json:"copyAbility,omitempty"`
	SwapAbilities  bool `json:"swapAbilities,omitempty"`
	NullifyAbility bool `json:"nullifyAbility,omitempty"`
	MutualLock     int  `json:"mutualLock,omitempty"`

	// Team auras and enemy debuffs at battle start
	TeamAttackBuff    float64 `json:"teamAttackBuff,omitempty"`
	TeamHPBuff        int     `json:"teamHpBuff,omitempty"`
	SharedAttack      int     `json:"sharedAttack,omitempty"`
	AllyShield        int     `json:"allyShield,omitempty"`
	AllyAttackBuff    int     `json:"allyAttackBuff,omitempty"`
	EnemyAttackDebuff int     `json:"enemyAttackDebuff,omitempty"`
	SkipEnemyTurn     int     `json:"skipEnemyTurn,omitempty"`
	MassFreeze        int     `json:"massFreeze,omitempty"`

	// Turn start
	HealPerTurn         int     `json:"healPerTurn,omitempty"`
	RegenPercent        float64 `json:"regenPercent,omitempty"`
	GrowHP              int     `json:"growHp,omitempty"`
	SelfBurn            int     `json:"selfBurn,omitempty"`
	AttackGain          int     `json:"attackGain,omitempty"`
	DamageStack         float64 `json:"damageStack,omitempty"`
	PatienceStack       float64 `json:"patienceStack,omitempty"`
	AcrobatStack        float64 `json:"acrobatStack,omitempty"`
	ChaosRange          float64 `json:"chaosRange,omitempty"`
	Threshold           float64 `json:"threshold,omitempty"`
	RageThreshold       float64 `json:"rageThreshold,omitempty"`
	RageMod             float64 `json:"rageMod,omitempty"`
	EnrageThreshold     float64 `json:"enrageThreshold,omitempty"`
	EnrageAttack        int     `json:"enrageAttack,omitempty"`
	DesperateThreshold  float64 `json:"desperateThreshold,omitempty"`
	DesperateMulti      float64 `json:"desperateMulti,omitempty"`
	AdrenalineThreshold float64 `json:"adrenalineThreshold,omitempty"`
	AdrenalineAttack    int     `json:"adrenalineAttack,omitempty"`

	// Extra attacks
	DoubleAttack          bool    `json:"doubleAttack,omitempty"`
	ExtraTurnChance       float64 `json:"extraTurnChance,omitempty"`
	InstantReattackChance float64 `json:"instantReattackChance,omitempty"`
	ChainAttackChance     float64 `json:"chainAttackChance,omitempty"`

	// Applied by the attacker after a hit lands
	PoisonDamage      int     `json:"poisonDamage,omitempty"`
	PoisonDuration    int     `json:"poisonDuration,omitempty"`
	BurnDamage        int     `json:"burnDamage,omitempty"`
	BurnDuration      int     `json:"burnDuration,omitempty"`
	BleedDamage       int     `json:"bleedDamage,omitempty"`
	BleedDuration     int     `json:"bleedDuration,omitempty"`
	StunChance        float64 `json:"stunChance,omitempty"`
	FreezeChance      float64 `json:"freezeChance,omitempty"`
	CrippleFlat       int     `json:"crippleFlat,omitempty"`
	ShatterHP         int     `json:"shatterHp,omitempty"`
	DrainPercent      float64 `json:"drainPercent,omitempty"`
	SilenceTurns      int     `json:"silenceTurns,omitempty"`
	BurnAbilityChance float64 `json:"burnAbilityChance,omitempty"`
	BurnAbilityTurns  int     `json:"burnAbilityTurns,omitempty"`
	WeakenPercent     float64 `json:"weakenPercent,omitempty"`
	Duration          int     `json:"duration,omitempty"`
	LifeOnHit         int     `json:"lifeOnHit,omitempty"`
	AttackStack       int     `json:"attackStack,omitempty"`
	FeintDodge        float64 `json:"feintDodge,omitempty"`
	ArmorBreak        bool    `json:"armorBreak,omitempty"`

	// Applied by the defender after being hit
	CounterChance   float64 `json:"counterChance,omitempty"`
	CounterAttack   bool    `json:"counterAttack,omitempty"`
	AnticipateDodge bool    `json:"anticipateDodge,omitempty"`
	DodgeHeal       int     `json:"dodgeHeal,omitempty"`

	// Kill and death
	AbsorbAttack   float64 `json:"absorbAttack,omitempty"`
	AllyHealOnKill float64 `json:"allyHealOnKill,omitempty"`
	OverkillHeal   bool    `json:"overkillHeal,omitempty"`
	DeathDamage    float64 `json:"deathDamage,omitempty"`
	DeathBuff      float64 `json:"deathBuff,omitempty"`
	VengeanceBuff  float64 `json:"vengeanceBuff,omitempty"`

	// Survival and revival
	Undying       bool    `json:"undying,omitempty"`
	SurviveOnce   bool    `json:"surviveOnce,omitempty"`
	Guardian      bool    `json:"guardian,omitempty"`
	InstinctDodge bool    `json:"instinctDodge,omitempty"`
	RevivePercent float64 `json:"revivePercent,omitempty"`
}

// CanSurvive reports whether the modifier carries a survive-at-1-HP effect.
func (m *Modifier) CanSurvive() bool {
	return m.Undying || m.SurviveOnce || m.Guardian || m.InstinctDodge
}

// AbilityDef defines an ability loaded from JSON.
type AbilityDef struct {
	ID          int      `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Category    Category `json:"category"`
	Trigger     Trigger  `json:"trigger"`
	Modifier    Modifier `json:"modifier"`
}

// Is reports whether the ability fires on the given trigger.
func (a *AbilityDef) Is(t Trigger) bool {
	return a != nil && a.Trigger == t
}

// AbilitiesFile represents the structure of abilities.json.
type AbilitiesFile struct {
	Abilities []AbilityDef `json:"abilities"`
}

// LoadAbilities loads ability definitions from the embedded abilities.json file.
func LoadAbilities() ([]AbilityDef, error) {
	file, err := Load[AbilitiesFile](abilitiesFile)
	if err != nil {
		return nil, err
	}
	return file.Abilities, nil
}
