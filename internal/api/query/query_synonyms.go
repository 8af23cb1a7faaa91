package query

import (
	"sort"
	"strconv"
)

// synonymSet maps a canonical key to the phrases that express it. Sets are
// kept in slices so that ties in phrase length resolve in declaration order.
type synonymSet struct {
	key     string
	phrases []string
}

var categorySynonyms = []synonymSet{
	{"restaurant", []string{
		"restaurant", "restaurants", "eat", "eating", "food", "dine",
		"dining", "lunch", "dinner", "brunch", "eatery", "eateries",
		"trattoria", "trattorias", "bistro", "pizzeria",
	}},
	{"attraction", []string{
		"attraction", "attractions", "sight", "sights", "sightseeing",
		"landmark", "landmarks", "monument", "monuments", "temple",
		"temples", "cathedral", "cathedrals", "basilica", "palace",
		"palaces", "castle", "castles", "ruin", "ruins", "church",
		"churches", "tower", "towers",
	}},
	{"activity", []string{
		"activity", "activities", "things to do", "experience",
		"experiences", "tour", "tours", "class", "classes",
		"workshop", "workshops", "excursion", "walk", "walking tour",
	}},
	{"shopping", []string{
		"shopping", "shop", "shops", "store", "stores", "market",
		"markets", "boutique", "boutiques", "mall",
	}},
	{"nightlife", []string{
		"nightlife", "club", "clubs", "nightclub", "nightclubs",
		"lounge", "lounges", "disco",
	}},
}

var subcategorySynonyms = []synonymSet{
	{"museum", []string{"museum", "museums", "gallery", "galleries", "exhibit", "exhibition"}},
	{"cafe", []string{"cafe", "cafes", "coffee", "coffee shop", "coffeehouse"}},
	{"bar", []string{"bar", "bars", "pub", "pubs", "tavern", "wine bar", "cocktail bar"}},
	{"park", []string{"park", "parks"}},
	{"garden", []string{"garden", "gardens", "botanical"}},
	{"beach", []string{"beach", "beaches", "seaside", "shore", "coast", "coastal"}},
	{"church", []string{"church", "churches", "chapel", "basilica", "cathedral", "cathedrals"}},
	{"fine_dining", []string{"fine dining", "michelin", "gourmet", "upscale dining"}},
	{"street_food", []string{"street food", "street vendor", "food stall", "food cart"}},
	{"spa", []string{"spa", "spas", "thermal bath", "thermal baths", "onsen", "hammam"}},
	{"hiking", []string{"hiking", "hike", "hikes", "trek", "trekking", "trail", "trails"}},
	{"viewpoint", []string{"viewpoint", "viewpoints", "lookout", "overlook", "panoramic", "scenic view"}},
}

// subcategoryParent infers the category when only a subcategory was named.
var subcategoryParent = map[string]string{
	"museum":      "attraction",
	"cafe":        "restaurant",
	"bar":         "restaurant",
	"park":        "attraction",
	"garden":      "attraction",
	"beach":       "attraction",
	"church":      "attraction",
	"fine_dining": "restaurant",
	"street_food": "restaurant",
	"spa":         "activity",
	"hiking":      "activity",
	"viewpoint":   "attraction",
}

var vibeSynonyms = []synonymSet{
	{"romantic", []string{
		"romantic", "romance", "love", "intimate", "couples", "date",
		"date night", "honeymoon", "candlelit",
	}},
	{"cultural", []string{
		"cultural", "culture", "heritage", "historical", "history",
		"art", "artistic", "traditional", "ancient",
	}},
	{"foodie", []string{
		"foodie", "culinary", "gastronomic", "gourmet", "cuisine",
		"tasting", "food lover",
	}},
	{"adventure", []string{
		"adventure", "adventurous", "thrill", "thrilling", "exciting",
		"extreme", "adrenaline",
	}},
	{"relaxation", []string{
		"relaxation", "relax", "relaxing", "chill", "calm", "peaceful",
		"quiet", "tranquil", "serene", "laid-back",
	}},
	{"nature", []string{
		"nature", "natural", "outdoors", "outdoor", "scenic", "green",
		"wilderness", "wildlife",
	}},
	{"nightlife", []string{
		"nightlife", "party", "partying", "clubbing", "drinks",
		"cocktails", "night out", "lively",
	}},
	{"photography", []string{
		"photography", "photo", "photos", "photogenic", "instagram",
		"instagrammable", "scenic views", "picture", "picturesque",
	}},
	{"wellness", []string{
		"wellness", "health", "yoga", "meditation", "thermal",
		"rejuvenation", "mindfulness",
	}},
	{"shopping", []string{
		"shopping", "boutiques", "fashion", "vintage", "antiques",
		"souvenirs",
	}},
}

var groupSynonyms = []synonymSet{
	{"family", []string{"family", "families", "family-friendly"}},
	{"kids", []string{"kids", "children", "child", "toddler", "toddlers"}},
	{"couple", []string{"couple", "couples", "two of us", "partner"}},
	{"honeymoon", []string{"honeymoon", "honeymooners", "newlywed", "newlyweds"}},
	{"solo", []string{"solo", "alone", "by myself", "solo traveler"}},
	{"friends", []string{"friends", "friend group", "buddies", "group trip", "mates"}},
	{"seniors", []string{"seniors", "senior", "elderly", "retired", "retirees", "older adults"}},
	{"business", []string{"business", "corporate", "work trip", "conference"}},
}

var attributeKeywords = []synonymSet{
	{"is_hidden_gem", []string{
		"hidden gem", "hidden gems", "off the beaten path", "secret",
		"local secret", "underrated", "lesser known", "lesser-known",
		"off-beat", "offbeat", "undiscovered",
	}},
	{"is_must_see", []string{
		"must see", "must-see", "must visit", "must-visit", "iconic",
		"famous", "top rated", "top-rated", "best", "essential",
		"cannot miss", "can't miss", "don't miss", "bucket list",
	}},
	{"is_kid_friendly", []string{
		"kid friendly", "kid-friendly", "child friendly", "child-friendly",
		"family friendly", "family-friendly", "for kids", "for children",
		"with kids", "with children",
	}},
	{"instagram_worthy", []string{
		"instagram", "instagrammable", "photogenic", "photo spot",
		"photo spots", "photo worthy", "photo-worthy",
	}},
}

var costKeywords = []synonymSet{
	{"1", []string{"cheap", "budget", "free", "inexpensive", "affordable", "low cost", "low-cost", "backpacker"}},
	{"2", []string{"moderate", "mid-range", "mid range", "reasonable", "value"}},
	{"4", []string{"upscale", "fancy", "high-end", "high end", "premium", "splurge"}},
	{"5", []string{"luxury", "luxurious", "expensive", "fine dining", "michelin", "exclusive", "5-star", "five star"}},
}

var timeKeywords = []synonymSet{
	{"morning", []string{"morning", "breakfast", "brunch", "early", "sunrise", "dawn"}},
	{"afternoon", []string{"afternoon", "lunch", "midday", "daytime"}},
	{"evening", []string{"evening", "dinner", "sunset", "dusk", "golden hour"}},
	{"night", []string{"night", "nighttime", "late night", "after dark", "midnight"}},
}

// cityPrepositions introduce a city reference. Order is the search order.
var cityPrepositions = []string{"in", "at", "of", "around", "near", "from", "visit", "visiting"}

// ambiguousCities are city names that are also common words; they only
// resolve to a city when introduced by a preposition.
var ambiguousCities = map[string]bool{
	"nice":  true,
	"bath":  true,
	"split": true,
	"lima":  true,
}

type phrase struct {
	text      string
	canonical string
}

// sortedPhrases flattens sets into (phrase, key) pairs ordered longest first.
func sortedPhrases(sets []synonymSet) []phrase {
	var out []phrase
	for _, s := range sets {
		for _, p := range s.phrases {
			out = append(out, phrase{text: p, canonical: s.key})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return len(out[i].text) > len(out[j].text)
	})
	return out
}

func costLevel(key string) int {
	n, err := strconv.Atoi(key)
	if err != nil {
		return 0
	}
	return n
}
