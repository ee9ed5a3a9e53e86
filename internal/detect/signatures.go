package detect

// botSignatures 爬虫/工具 UA 片段，统一小写后做子串匹配
var botSignatures = []string{
	// 搜索引擎
	"googlebot", "google-inspectiontool", "googleother", "adsbot-google", "mediapartners-google",
	"apis-google", "feedfetcher-google", "storebot-google", "bingbot", "bingpreview", "msnbot",
	"adidxbot", "slurp", "duckduckbot", "duckassistbot", "baiduspider", "yandexbot", "yandex.com/bots",
	"sogou", "exabot", "seznambot", "naverbot", "yeti/", "applebot", "petalbot", "qwantify",
	// SEO 与数据抓取
	"ahrefsbot", "semrushbot", "mj12bot", "dotbot", "rogerbot", "screaming frog", "serpstatbot",
	"blexbot", "dataforseobot", "seokicks", "linkdexbot", "megaindex", "barkrowler", "bytespider",
	"gptbot", "chatgpt-user", "oai-searchbot", "claudebot", "anthropic-ai", "ccbot", "perplexitybot",
	"amazonbot", "facebookexternalhit", "facebookcatalog", "meta-externalagent", "twitterbot",
	"linkedinbot", "slackbot", "discordbot", "telegrambot", "pinterestbot", "redditbot",
	"embedly", "quora link preview", "skypeuripreview", "vkshare", "w3c_validator",
	// HTTP 库与命令行工具
	"curl/", "wget/", "python-requests", "python-urllib", "aiohttp", "httpx", "go-http-client",
	"java/", "okhttp", "apache-httpclient", "libwww-perl", "php/", "guzzlehttp", "ruby", "axios/",
	"node-fetch", "undici", "postmanruntime", "insomnia", "httpie", "scrapy", "mechanize", "winhttp",
	// 无头浏览器与自动化
	"headlesschrome", "phantomjs", "puppeteer", "playwright", "selenium", "webdriver", "cypress",
	"electron/", "splash",
	// 监控探针
	"uptimerobot", "pingdom", "statuscake", "site24x7", "newrelicpinger", "datadog", "freshping",
	"betteruptime", "hetrixtools", "nagios", "zabbix", "monitis", "gtmetrix", "lighthouse",
	"pagespeed", "chrome-lighthouse",
	// 通用关键字
	"bot", "crawler", "spider", "crawling", "scraper", "fetcher", "archiver", "preview",
}

// spamReferrerDomains 已知垃圾来源域名
var spamReferrerDomains = []string{
	"semalt.com", "semalt.semalt.com", "buttons-for-website.com", "buttons-for-your-website.com",
	"best-seo-offer.com", "best-seo-solution.com", "darodar.com", "econom.co", "ilovevitaly.com",
	"ilovevitaly.ru", "priceg.com", "blackhatworth.com", "hulfingtonpost.com", "cenoval.ru",
	"bestwebsitesawards.com", "o-o-6-o-o.com", "o-o-8-o-o.com", "free-social-buttons.com",
	"get-free-traffic-now.com", "trafficmonetize.org", "4webmasters.org", "rank-checker.online",
	"seo-platform.com", "site-auditor.online", "simple-share-buttons.com", "social-buttons.com",
	"floating-share-buttons.com", "traffic2money.com", "webmonetizer.net", "videos-for-your-business.com",
	"success-seo.com", "100dollars-seo.com", "googlsucks.com", "anticrawler.org", "kambasoft.com",
	"savetubevideo.com", "srecorder.com", "event-tracking.com", "copyrightclaims.org", "offers.bycontext.com",
}

// botIPPrefixes 已知爬虫与云厂商出口地址前缀，按字符串前缀匹配
var botIPPrefixes = []string{
	// Googlebot
	"66.249.64.", "66.249.65.", "66.249.66.", "66.249.68.", "66.249.69.", "66.249.70.",
	"66.249.71.", "66.249.72.", "66.249.73.", "66.249.74.", "66.249.75.", "66.249.76.",
	"66.249.77.", "66.249.79.", "2001:4860:4801:",
	// Bingbot
	"157.55.39.", "207.46.13.", "40.77.167.", "13.66.139.", "52.167.144.", "199.30.24.",
	// Yandex / Baidu / Apple / Ahrefs / Semrush
	"5.255.253.", "77.88.5.", "95.108.213.", "180.76.15.", "220.181.108.", "17.241.",
	"17.22.237.", "54.36.148.", "54.36.149.", "51.222.253.", "85.208.96.", "185.191.171.",
}

// datacenterRanges 主流云与主机厂商网段
var datacenterRanges = []string{
	// AWS
	"3.0.0.0/9", "13.32.0.0/12", "18.128.0.0/9", "34.192.0.0/10", "35.152.0.0/13",
	"44.192.0.0/10", "52.0.0.0/10", "54.64.0.0/11", "54.144.0.0/12",
	// Google Cloud
	"34.64.0.0/10", "35.184.0.0/13", "35.192.0.0/12", "35.208.0.0/12", "104.154.0.0/15",
	"104.196.0.0/14", "130.211.0.0/16",
	// Azure
	"13.64.0.0/11", "20.33.0.0/16", "20.36.0.0/14", "20.40.0.0/13", "40.64.0.0/10",
	"52.224.0.0/11", "104.40.0.0/13",
	// DigitalOcean
	"104.131.0.0/16", "138.197.0.0/16", "142.93.0.0/16", "159.65.0.0/16", "159.89.0.0/16",
	"159.203.0.0/16", "161.35.0.0/16", "164.90.0.0/16", "165.227.0.0/16", "167.99.0.0/16",
	"167.172.0.0/16", "178.62.0.0/16", "188.166.0.0/16", "206.189.0.0/16",
	// Hetzner
	"5.9.0.0/16", "78.46.0.0/15", "88.198.0.0/16", "95.216.0.0/15", "116.202.0.0/15",
	"135.181.0.0/16", "136.243.0.0/16", "138.201.0.0/16", "144.76.0.0/16", "148.251.0.0/16",
	"157.90.0.0/16", "159.69.0.0/16", "168.119.0.0/16", "176.9.0.0/16",
	// OVH
	"51.38.0.0/16", "51.68.0.0/16", "51.75.0.0/16", "51.77.0.0/16", "51.83.0.0/16",
	"51.89.0.0/16", "51.91.0.0/16", "54.36.0.0/16", "137.74.0.0/16", "145.239.0.0/16",
	"147.135.0.0/16", "149.202.0.0/16", "151.80.0.0/16", "176.31.0.0/16", "178.32.0.0/15",
	// Linode / Vultr / Oracle / Alibaba / Tencent
	"45.33.0.0/17", "45.56.64.0/18", "45.79.0.0/16", "139.162.0.0/16", "172.104.0.0/15",
	"45.32.0.0/16", "45.63.0.0/17", "45.76.0.0/15", "66.42.32.0/19", "108.61.0.0/16",
	"129.146.0.0/16", "130.61.0.0/16", "132.145.0.0/16", "140.238.0.0/16", "152.67.0.0/16",
	"47.74.0.0/15", "47.88.0.0/14", "8.208.0.0/12", "43.128.0.0/10", "49.51.0.0/16",
	"2600:1f00::/24", "2600:1900::/28", "2a03:b0c0::/32", "2a01:4f8::/29", "2001:41d0::/32",
}
