// internal/tables/tables.go

// Package tables holds the keyword and pricing tables that drive the stage
// evaluators. Defaults ship compiled in; deployments may override any table
// from the config file so scoring can be tuned without touching evaluator
// logic.
package tables

import (
	"fmt"

	"github.com/spf13/viper"
)

// Category pairs a category name with its keyword bucket. Order matters:
// the first category in the slice wins score ties.
type Category struct {
	Name     string   `mapstructure:"name"`
	Keywords []string `mapstructure:"keywords"`
}

// SimilarityTables feed the internal and external similarity stages.
type SimilarityTables struct {
	Stopwords       []string `mapstructure:"stopwords"`
	BusinessConcept []string `mapstructure:"business_concept"`
	Problem         []string `mapstructure:"problem"`
	Solution        []string `mapstructure:"solution"`
	BusinessModel   []string `mapstructure:"business_model"`
	Technology      []string `mapstructure:"technology"`
	Industry        []string `mapstructure:"industry"`
}

// FeasibilityTables feed the implementation feasibility stage.
type FeasibilityTables struct {
	ComplexTech       []string `mapstructure:"complex_tech"`
	ModerateTech      []string `mapstructure:"moderate_tech"`
	SimpleTech        []string `mapstructure:"simple_tech"`
	Experience        []string `mapstructure:"experience"`
	ComplexFeatures   []string `mapstructure:"complex_features"`
	QuickFeatures     []string `mapstructure:"quick_features"`
	ResourceIntensive []string `mapstructure:"resource_intensive"`
	LowResource       []string `mapstructure:"low_resource"`
}

// CostTables feed the cost analysis stage. Monetary values are USD.
type CostTables struct {
	HourlyRate            float64            `mapstructure:"hourly_rate"`
	ComplexityHours       map[string]float64 `mapstructure:"complexity_hours"`
	InfrastructureMonthly map[string]float64 `mapstructure:"infrastructure_monthly"`
	ThirdPartyFees        map[string]float64 `mapstructure:"third_party_fees"`
	OperationalBase       float64            `mapstructure:"operational_base"`
	InfrastructureMonths  int                `mapstructure:"infrastructure_months"`
}

// ImpactTables feed the customer impact stage.
type ImpactTables struct {
	Severity       []string `mapstructure:"severity"`
	LargeMarket    []string `mapstructure:"large_market"`
	SpecificMarket []string `mapstructure:"specific_market"`
	NicheMarket    []string `mapstructure:"niche_market"`
	Innovation     []string `mapstructure:"innovation"`
	Improvement    []string `mapstructure:"improvement"`
	Existing       []string `mapstructure:"existing"`
	Revenue        []string `mapstructure:"revenue"`
	Scalability    []string `mapstructure:"scalability"`
	Sustainability []string `mapstructure:"sustainability"`
	PositiveUX     []string `mapstructure:"positive_ux"`
	NegativeUX     []string `mapstructure:"negative_ux"`
	DesignMention  []string `mapstructure:"design_mention"`
}

// Tables is the full evaluator configuration.
type Tables struct {
	Categories  []Category        `mapstructure:"categories"`
	Similarity  SimilarityTables  `mapstructure:"similarity"`
	Feasibility FeasibilityTables `mapstructure:"feasibility"`
	Cost        CostTables        `mapstructure:"cost"`
	Impact      ImpactTables      `mapstructure:"impact"`
}

// Defaults returns the built-in tables.
func Defaults() *Tables {
	return &Tables{
		Categories: []Category{
			{Name: "fintech", Keywords: []string{"payment", "banking", "finance", "financial", "lending", "loan", "credit", "wallet", "trading", "invoice", "insurance"}},
			{Name: "healthtech", Keywords: []string{"health", "medical", "patient", "clinic", "hospital", "doctor", "diagnosis", "therapy", "wellness", "pharma"}},
			{Name: "edtech", Keywords: []string{"education", "learning", "student", "course", "teacher", "training", "tutorial", "school", "curriculum", "quiz"}},
			{Name: "ecommerce", Keywords: []string{"shop", "shopping", "marketplace", "retail", "store", "commerce", "checkout", "cart", "merchant", "inventory"}},
			{Name: "logistics", Keywords: []string{"delivery", "shipping", "logistics", "fleet", "warehouse", "supply chain", "tracking", "freight", "courier"}},
			{Name: "devtools", Keywords: []string{"developer", "api", "sdk", "deployment", "devops", "testing", "monitoring", "infrastructure", "ci", "compiler"}},
			{Name: "ai", Keywords: []string{"machine learning", "artificial intelligence", "neural", "model", "prediction", "nlp", "computer vision", "llm", "recommendation"}},
			{Name: "social", Keywords: []string{"social", "community", "chat", "messaging", "network", "sharing", "content", "creator", "forum"}},
			{Name: "other", Keywords: []string{"platform", "service", "tool", "system", "application"}},
		},
		Similarity: SimilarityTables{
			Stopwords: []string{
				"the", "and", "for", "with", "that", "this", "are", "was", "will",
				"have", "has", "can", "our", "your", "their", "from", "into",
				"using", "use", "used", "which", "also", "all", "any", "its",
				"them", "they", "would", "could", "should", "than", "then",
			},
			BusinessConcept: []string{
				"marketplace", "platform", "on-demand", "subscription", "booking",
				"delivery", "payment", "analytics", "automation", "manufacturing",
				"electronics", "hardware", "software", "saas", "b2b", "b2c",
				"rental", "sharing", "matching", "recruiting", "insurance",
			},
			Problem: []string{
				"expensive", "slow", "manual", "fragmented", "inefficient",
				"access", "shortage", "waste", "cost", "time", "quality",
				"availability", "transparency", "trust", "fraud", "compliance",
			},
			Solution: []string{
				"marketplace", "platform", "app", "automation", "api",
				"dashboard", "algorithm", "network", "service", "on-demand",
				"realtime", "prediction", "matching", "aggregation",
			},
			BusinessModel: []string{
				"subscription", "commission", "transaction fee", "freemium",
				"advertising", "licensing", "saas", "marketplace", "per-use",
			},
			Technology: []string{
				"machine learning", "ai", "blockchain", "iot", "mobile", "cloud",
				"api", "hardware", "robotics", "3d printing", "sensor", "drone",
				"computer vision", "nlp", "big data", "ar", "vr",
			},
			Industry: []string{
				"healthcare", "finance", "education", "retail", "logistics",
				"manufacturing", "electronics", "real estate", "food",
				"transportation", "energy", "agriculture", "construction",
				"legal", "travel", "hospitality", "media", "gaming",
			},
		},
		Feasibility: FeasibilityTables{
			ComplexTech: []string{
				"machine learning", "artificial intelligence", "blockchain",
				"distributed", "real-time", "computer vision", "nlp",
				"recommendation engine", "neural", "microservices", "kubernetes",
			},
			ModerateTech: []string{
				"api", "database", "mobile app", "integration", "dashboard",
				"authentication", "search", "notification", "payment gateway",
			},
			SimpleTech: []string{
				"website", "landing page", "form", "blog", "static", "crud",
			},
			Experience: []string{
				"experienced", "senior", "expert", "previously built", "veteran",
				"years of experience", "shipped", "founded",
			},
			ComplexFeatures: []string{
				"real-time", "multi-tenant", "offline", "encryption",
				"high availability", "scale", "concurrent", "streaming",
			},
			QuickFeatures: []string{
				"mvp", "prototype", "simple", "basic", "minimal", "proof of concept",
			},
			ResourceIntensive: []string{
				"gpu", "video", "streaming", "training", "large dataset",
				"high traffic", "24/7", "on-premise",
			},
			LowResource: []string{
				"serverless", "static", "low traffic", "batch", "lightweight",
			},
		},
		Cost: CostTables{
			HourlyRate: 50,
			ComplexityHours: map[string]float64{
				"high":   800,
				"medium": 400,
				"low":    200,
			},
			InfrastructureMonthly: map[string]float64{
				"cloud":     200,
				"real-time": 150,
				"streaming": 150,
				"database":  100,
				"storage":   100,
				"gpu":       500,
				"cdn":       80,
			},
			ThirdPartyFees: map[string]float64{
				"payment":   500,
				"sms":       200,
				"email":     100,
				"maps":      150,
				"analytics": 250,
				"ai api":    300,
			},
			OperationalBase:      200,
			InfrastructureMonths: 6,
		},
		Impact: ImpactTables{
			Severity: []string{
				"critical", "urgent", "severe", "pain", "crisis", "dangerous",
				"life-threatening", "costly", "broken", "failing",
			},
			LargeMarket: []string{
				"everyone", "global", "billion", "mass market", "universal",
				"worldwide", "millions of users",
			},
			SpecificMarket: []string{
				"small business", "enterprise", "students", "patients",
				"developers", "freelancers", "retailers", "drivers",
			},
			NicheMarket: []string{
				"niche", "hobbyist", "collectors", "enthusiasts", "rare",
			},
			Innovation: []string{
				"first", "novel", "unique", "breakthrough", "patent",
				"revolutionary", "never before", "new approach",
			},
			Improvement: []string{
				"faster", "cheaper", "easier", "better", "simpler",
				"more accurate", "streamlined",
			},
			Existing: []string{
				"like", "similar to", "alternative to", "clone", "competitor",
			},
			Revenue: []string{
				"revenue", "subscription", "pricing", "monetization",
				"customers pay", "commission", "margin",
			},
			Scalability: []string{
				"scalable", "scale", "expand", "growth", "network effect",
			},
			Sustainability: []string{
				"recurring", "retention", "long-term", "sustainable", "moat",
			},
			PositiveUX: []string{
				"intuitive", "seamless", "easy to use", "one click",
				"frictionless", "accessible", "delightful",
			},
			NegativeUX: []string{
				"complicated", "steep learning curve", "manual steps",
				"confusing", "cumbersome",
			},
			DesignMention: []string{
				"design", "ux", "user experience", "interface", "usability",
			},
		},
	}
}

// Load reads table overrides from the given file and merges them over the
// defaults. A missing path returns the defaults unchanged.
func Load(path string) (*Tables, error) {
	t := Defaults()
	if path == "" {
		return t, nil
	}

	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read tables config: %w", err)
	}
	if err := v.Unmarshal(t); err != nil {
		return nil, fmt.Errorf("unmarshal tables config: %w", err)
	}
	return t, nil
}
