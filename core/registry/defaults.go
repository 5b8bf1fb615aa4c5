package registry

import "newswire-api/core/domain"

// GenericRules is the fallback used when no domain rule matches.
// An empty Title selects the page <title> and the generic heading chain.
var GenericRules = domain.RuleSet{
	Name:     "generic",
	Links:    "a[href]",
	Articles: "article, .article, .news-item, .journal-article",
	Date:     "time, .date, .published",
}

var defaultSources = []string{
	"https://jamanetwork.com/",
	"https://jamanetwork.com/journals/jama-health-forum",
	"https://jamanetwork.com/journals/jama",
	"https://www.nejm.org/equity",
	"https://www.nejm.org/browse/specialty/climate-change",
	"https://www.nejm.org/ai-in-medicine",
	"https://www.who.int/news-room/headlines",
	"https://www.bmj.com/",
	"https://www.bmj.com/news/news",
	"https://www.annualreviews.org/content/journals/soc",
	"https://www.annualreviews.org/content/journals/publhealth",
	"https://www.annualreviews.org/content/journals/nutr",
	"https://www.nature.com/collections/ggahieiica",
	"https://www.nature.com/nm/articles?type=research-highlight",
	"https://www.cdc.gov/media/site.html",
	"https://www.nature.com/subjects/health-sciences/nature",
	"https://news.un.org/en/news/topic/health",
	"https://www.thelancet.com/journals/lanpub/home",
	"https://www.who.int/news-room",
	"https://news.un.org/en/news/topic/women",
}

var defaultOwners = []struct{ url, name string }{
	{"https://jamanetwork.com/journals/jama-health-forum", "JAMA Health Forum"},
	{"https://jamanetwork.com/journals/jama", "JAMA"},
	{"https://jamanetwork.com/", "JAMA Network"},
	{"https://www.nejm.org/", "The New England Journal of Medicine"},
	{"https://www.who.int/", "World Health Organization"},
	{"https://www.bmj.com/", "The BMJ"},
	{"https://www.annualreviews.org/content/journals/publhealth", "Annual Review of Public Health"},
	{"https://www.annualreviews.org/content/journals/nutr", "Annual Review of Nutrition"},
	{"https://www.annualreviews.org/content/journals/soc", "Annual Review of Sociology"},
	{"https://www.nature.com/nm/", "Nature Medicine"},
	{"https://www.nature.com/", "Nature"},
	{"https://www.cdc.gov/", "Centers for Disease Control and Prevention"},
	{"https://news.un.org/", "UN News"},
	{"https://www.thelancet.com/journals/lanpub/", "The Lancet Public Health"},
}

// Default returns the built-in health news registry
func Default() *Registry {
	r := New(GenericRules)
	for _, s := range defaultSources {
		r.AddSource(s)
	}

	r.AddRule(HostContains("jamanetwork.com"), domain.RuleSet{
		Name:     "jamanetwork",
		Title:    ".article-full-text__title",
		Links:    "a[href]",
		Articles: ".article-item",
		Date:     ".article-date, time",
	})
	r.AddRule(HostContains("nejm.org"), domain.RuleSet{
		Name:     "nejm",
		Title:    ".m-article__title",
		Links:    "a[href]",
		Articles: ".m-article",
		Date:     ".m-article__date, time",
	})
	r.AddRule(HostContains("who.int"), domain.RuleSet{
		Name:     "who",
		Title:    ".news-item__title",
		Links:    "a[href]",
		Articles: ".news-item",
		Date:     ".timestamp, time",
	})

	for _, o := range defaultOwners {
		r.AddOwner(o.url, o.name)
	}
	return r
}
