package generate

import "math/rand"

// Topics is the built-in catalog of passage topics, spanning the five
// subject areas IELTS Academic Reading draws from.
var Topics = []string{
	// Science & Technology
	"Artificial Intelligence in Education",
	"The development of the internet",
	"Space exploration and Mars missions",
	"Robotics in everyday life",
	"Nanotechnology innovations",
	"Human cloning debates",
	"The science of renewable energy",
	"Electric vehicles and sustainable transport",
	"Biotechnology and agriculture",
	"3D printing applications",
	"The evolution of smartphones",
	"Quantum computing",
	"Medical imaging technologies",
	"Cybersecurity and data protection",
	"Social media algorithms",
	"Satellite technology",
	"The invention of the steam engine",
	"Renewable materials in construction",
	"The history of aviation",
	"Future of genetic engineering",

	// Environment & Nature
	"Global warming and climate change",
	"The melting of polar ice caps",
	"Deforestation in the Amazon",
	"Endangered species conservation",
	"Coral reefs under threat",
	"Air pollution in urban areas",
	"Plastic waste in oceans",
	"Desertification and drought",
	"Natural disasters and human response",
	"Water scarcity and management",
	"The impact of pesticides on ecosystems",
	"Earthquakes and volcanic activity",
	"Wildfires and forest management",
	"Renewable vs non-renewable resources",
	"Invasive species and ecosystems",
	"The ozone layer recovery",
	"The carbon cycle and climate regulation",
	"Green architecture and eco-buildings",
	"Global fisheries and overfishing",
	"The role of national parks",

	// History & Culture
	"The Silk Road trade routes",
	"The Great Wall of China",
	"The Roman Empire's engineering feats",
	"The Industrial Revolution",
	"The invention of the printing press",
	"The Renaissance period",
	"Ancient Egyptian civilisation",
	"The history of the Olympic Games",
	"The voyages of Christopher Columbus",
	"The spread of the English language",
	"The Age of Enlightenment",
	"The history of democracy",
	"Vikings and exploration",
	"The French Revolution",
	"The history of photography",
	"Ancient Greek philosophy",
	"The evolution of money and banking",
	"The history of slavery",
	"Castles and medieval society",
	"The history of written scripts",

	// Society & Education
	"Gender equality movements",
	"Literacy and global education",
	"Ageing populations and healthcare",
	"Urbanisation and megacities",
	"Migration and multicultural societies",
	"Child labour issues",
	"Crime prevention methods",
	"Work-life balance",
	"Social media and communication",
	"Mental health awareness",
	"Online learning platforms",
	"The future of higher education",
	"Globalisation and cultural identity",
	"Volunteering and social responsibility",
	"Consumerism and modern lifestyles",
	"The psychology of advertising",
	"Human rights campaigns",
	"Sports and national identity",
	"Food culture and global diets",
	"Fashion and cultural trends",

	// Economy & Development
	"Global trade agreements",
	"The rise of China's economy",
	"The Great Depression",
	"Tourism and heritage sites",
	"The sharing economy (Uber, Airbnb)",
	"The history of banking",
	"Microfinance in developing nations",
	"International aid and development",
	"The oil industry and geopolitics",
	"The economics of renewable energy",
	"Transportation systems of the future",
	"The space economy and commercialisation",
	"Agricultural revolutions",
	"The digital economy",
	"Global financial crises",
	"International organisations (IMF, WTO)",
	"E-commerce and retail evolution",
	"The gig economy",
	"Poverty reduction strategies",
	"Sustainable development goals (SDGs)",
}

// RandomTopic picks one topic using rng.
func RandomTopic(rng *rand.Rand) string {
	return Topics[rng.Intn(len(Topics))]
}

// SampleTopics picks n distinct topics using rng. When n exceeds the
// catalog size the whole shuffled catalog is returned.
func SampleTopics(rng *rand.Rand, n int) []string {
	perm := rng.Perm(len(Topics))
	if n > len(Topics) {
		n = len(Topics)
	}
	out := make([]string, n)
	for i := 0; i < n; i++ {
		out[i] = Topics[perm[i]]
	}
	return out
}
