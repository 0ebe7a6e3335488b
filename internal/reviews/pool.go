// Package reviews holds the sample review pool shown on product pages.
package reviews

import (
	"math/rand"
	"strings"
	"sync"
	"time"
)

type SampleReview struct {
	ID              int       `json:"id"`
	ReviewerName    string    `json:"reviewerName"`
	ReviewerEmail   string    `json:"reviewerEmail"`
	ReviewerInitial string    `json:"reviewerInitials"`
	ReviewText      string    `json:"reviewText"`
	Rating          int       `json:"rating"`
	CreatedAt       time.Time `json:"createdAt"`

	categoryIDs []uint
}

func (r SampleReview) generic() bool {
	return len(r.categoryIDs) == 0
}

type template struct {
	text       string
	rating     int
	categoryID uint // zero applies to every category
}

var templates = []template{
	{"This app template saved me weeks of coding! Perfect for Naija startups.", 5, 1},
	{"Clean code and easy to customize. Used it for my mobile app project!", 4, 1},
	{"Great components, but I had to tweak the auth flow a bit.", 4, 1},
	{"The UI is sleek and modern. My clients in Lagos loved it!", 5, 1},
	{"Solid template, but documentation could be more detailed.", 3, 1},

	{"This bot made me consistent profits on Binance. Amazing!", 5, 2},
	{"Setup was tricky, but the support team was quick to help.", 4, 2},
	{"Customizable strategies. Perfect for crypto trading in Nigeria.", 5, 2},
	{"Good bot, but needs better error handling for API issues.", 3, 2},
	{"Automated my trades perfectly. Worth every naira!", 5, 2},

	{"This tool made my website deployment a breeze. Highly recommend!", 5, 3},
	{"Great for building fast websites for Naija businesses.", 4, 3},
	{"Easy to use, but I needed more advanced features.", 3, 3},
	{"The drag-and-drop builder is a game-changer for web devs!", 5, 3},
	{"Solid tool, but integration with some CMS was tricky.", 4, 3},

	{"Transformed my Shopify store! Looks professional and clean.", 5, 4},
	{"Responsive theme, but customization took some learning.", 4, 4},
	{"Perfect for my e-commerce store in Abuja. Sales are up!", 5, 4},
	{"Great design, but I wish it had more color options.", 4, 4},
	{"The theme boosted my store's conversion rate. Love it!", 5, 4},

	{"Powerful toolkit for ethical hacking. Used it for a client project.", 5, 5},
	{"Comprehensive tools, but requires some expertise to use.", 4, 5},
	{"Helped me secure my client's network. Top-notch!", 5, 5},
	{"Great for pen testing, but the UI could be friendlier.", 3, 5},
	{"Essential for cybersecurity pros in Nigeria!", 5, 5},

	{"Amazing product! Exceeded my expectations.", 5, 0},
	{"Good value for money. Will buy again!", 4, 0},
	{"Really helpful for my project. Support was great!", 5, 0},
	{"Solid tool, but could use more documentation.", 3, 0},
	{"Perfect for my needs. Fast delivery!", 5, 0},
	{"Very useful, but setup took longer than expected.", 4, 0},
	{"Game-changer for my business. Highly recommend!", 5, 0},
	{"Good product, but I needed more customization options.", 4, 0},
	{"Support team was quick to resolve my issues.", 5, 0},
	{"Great for beginners and pros alike!", 4, 0},
	{"Really boosted my productivity. Love it!", 5, 0},
	{"Decent tool, but could improve on speed.", 3, 0},
	{"Perfect for my startup in Lagos!", 5, 0},
	{"Easy to use and great customer support.", 5, 0},
	{"Good, but I encountered a few bugs.", 3, 0},
	{"Transformed how I work. Highly recommended!", 5, 0},
	{"Solid product, but the learning curve was steep.", 4, 0},
	{"Amazing tool for Naija developers!", 5, 0},
	{"Great features, but I needed more tutorials.", 4, 0},
	{"Super reliable and worth the price!", 5, 0},
	{"Good tool, but customer support could be faster.", 3, 0},
	{"Helped me scale my business. Fantastic!", 5, 0},
	{"Very intuitive and easy to integrate.", 4, 0},
	{"Perfect for my e-commerce project!", 5, 0},
	{"Great, but I had to tweak it for my needs.", 4, 0},
}

var reviewerNames = []string{
	"Chinedu Okeke", "Aisha Mohammed", "Tolu Adeyemi", "Tunde Adebayo", "Ngozi Eze",
	"Emeka Nwosu", "Fatima Bello", "Segun Olatunji", "Chioma Igwe", "Bola Afolabi",
	"Kemi Salami", "David Okonkwo", "Amaka Nnaji", "Ifeanyi Chukwu", "Zainab Yusuf",
	"Obinna Eze", "Funke Akindele", "Sola Ogunleye", "Nkechi Obi", "Yemi Alade",
	"Chukwuma Okoro", "Hassan Umar", "Esther Okafor", "Gbenga Adewale", "Uche Nnamdi",
	"Rukayat Ibrahim", "Tobi Bakare", "Chisom Eke", "Musa Danjuma", "Adaobi Okoye",
	"Femi Adebayo", "Halima Sani", "Ikenna Ogu", "Joyce Kalu", "Abdul Bello",
	"Chiamaka Ude", "Oluwaseun Ade", "Zara Muhammed", "Kelechi Ibe", "Temitope Ojo",
	"Blessing Okoro", "Ibrahim Musa", "Clara Ekeh", "Samson Dike", "Mercy Aigbe",
	"Omar Faruk", "Nnenna Okoli", "Tayo Odumosu", "Aminu Lawal", "Ezinne Akudo",
}

const emailDomain = "toolhatch.shop"

// Pool is safe for concurrent use. Its contents live until the process exits
// or Reseed is called.
type Pool struct {
	mu      sync.Mutex
	rng     *rand.Rand
	reviews []SampleReview
}

func NewPool(rng *rand.Rand) *Pool {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	p := &Pool{rng: rng}
	p.Reseed()
	return p
}

// Reseed rebuilds the pool from the templates.
func (p *Pool) Reseed() {
	now := time.Now().UTC()
	reviews := make([]SampleReview, 0, len(templates))
	for i, tpl := range templates {
		name := reviewerNames[i%len(reviewerNames)]
		r := SampleReview{
			ID:              i + 1,
			ReviewerName:    name,
			ReviewerEmail:   ReviewerEmail(name),
			ReviewerInitial: Initials(name),
			ReviewText:      tpl.text,
			Rating:          tpl.rating,
			CreatedAt:       now,
		}
		if tpl.categoryID != 0 {
			r.categoryIDs = []uint{tpl.categoryID}
		}
		reviews = append(reviews, r)
	}

	p.mu.Lock()
	p.reviews = reviews
	p.mu.Unlock()
}

func (p *Pool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.reviews)
}

// ForCategory returns two or three random reviews drawn from the reviews
// written for categoryID plus the generic ones.
func (p *Pool) ForCategory(categoryID uint) []SampleReview {
	p.mu.Lock()
	defer p.mu.Unlock()

	var specific, generic []SampleReview
	for _, r := range p.reviews {
		switch {
		case r.generic():
			generic = append(generic, r)
		case containsID(r.categoryIDs, categoryID):
			specific = append(specific, r)
		}
	}
	candidates := append(specific, generic...)

	p.rng.Shuffle(len(candidates), func(i, j int) {
		candidates[i], candidates[j] = candidates[j], candidates[i]
	})

	count := 2 + p.rng.Intn(2)
	if count > len(candidates) {
		count = len(candidates)
	}
	return candidates[:count]
}

func containsID(ids []uint, id uint) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func ReviewerEmail(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), ".") + "@" + emailDomain
}

// Initials returns up to two uppercase initials, e.g. "Ngozi Eze" -> "NE".
func Initials(name string) string {
	var b strings.Builder
	for _, part := range strings.Fields(name) {
		if b.Len() == 2 {
			break
		}
		b.WriteString(strings.ToUpper(part[:1]))
	}
	return b.String()
}
