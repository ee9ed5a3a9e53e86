package referrer

// searchDomains 搜索引擎域名片段
var searchDomains = []string{
	// Google 主站、服务与国家域名
	"google.", "googleusercontent.com", "news.google", "scholar.google", "images.google",
	"discover.google", "gemini.google",
	// 其他搜索引擎
	"bing.com", "msn.com", "yahoo.", "search.yahoo", "duckduckgo.com", "baidu.com", "m.baidu.com",
	"yandex.", "ya.ru", "ecosia.org", "naver.com", "seznam.cz", "search.brave.com", "qwant.com",
	"startpage.com", "sogou.com", "so.com", "ask.com", "aol.com", "daum.net", "coccoc.com",
	"perplexity.ai", "kagi.com", "mojeek.com", "yep.com",
}

// socialDomains 社交与即时通讯域名片段
var socialDomains = []string{
	"facebook.com", "fb.com", "fb.me", "m.facebook.com", "l.facebook.com", "lm.facebook.com",
	"instagram.com", "l.instagram.com", "threads.net", "messenger.com",
	"twitter.com", "x.com", "t.co", "tweetdeck.com",
	"linkedin.com", "lnkd.in",
	"reddit.com", "redd.it", "old.reddit.com",
	"pinterest.", "pin.it",
	"tiktok.com", "vm.tiktok.com", "douyin.com",
	"youtube.com", "youtu.be",
	"whatsapp.com", "wa.me", "web.whatsapp.com",
	"telegram.org", "t.me", "web.telegram.org",
	"snapchat.com", "discord.com", "discord.gg", "discordapp.com",
	"tumblr.com", "quora.com", "medium.com", "mastodon.social", "mastodon.", "bsky.app", "bsky.social",
	"vk.com", "ok.ru", "weibo.com", "weibo.cn", "t.cn", "qq.com", "weixin.qq.com", "wechat.com",
	"zhihu.com", "douban.com", "xiaohongshu.com", "bilibili.com",
	"line.me", "kakao.com", "kakaotalk", "band.us", "naver.me",
	"slack.com", "teams.microsoft.com", "skype.com", "viber.com", "signal.org",
	"flipboard.com", "news.ycombinator.com", "lobste.rs", "producthunt.com", "digg.com",
	"mix.com", "substack.com", "buffer.com", "hootsuite.com", "ow.ly", "dlvr.it", "ift.tt",
	"nextdoor.com", "xing.com", "meetup.com", "twitch.tv", "vimeo.com",
}

// searchApps 以应用包名出现在 referrer 中的搜索应用
var searchApps = []string{
	"com.google.android.googlequicksearchbox", "com.google.android.apps.searchlite",
	"com.google.googlemobile", "com.microsoft.bing", "com.baidu.searchbox", "com.duckduckgo.mobile.android",
	"ru.yandex.searchplugin",
}

// appSchemes 应用内跳转的 referrer 协议
var appSchemes = []string{
	"android-app://", "ios-app://", "fb://", "fb-messenger://", "twitter://", "instagram://",
	"whatsapp://", "tg://", "line://", "linkedin://", "snapchat://", "pinterest://", "reddit://",
	"tiktok://", "snssdk1233://", "weixin://", "slack://", "discord://",
}

// inAppSignatures 应用内浏览器 UA 片段，按顺序取第一个命中，包含关系中较长的片段须排在前面
var inAppSignatures = []string{
	"micromessenger", "fban", "fbav", "fb_iab", "fbios", "messenger", "instagram", "whatsapp", " line/",
	"twitter", "linkedinapp", "snapchat", "pinterest", "tiktok", "musical_ly", "bytedancewebview",
	"telegram", "discord", "reddit", "threads", "weibo", "kakaotalk",
}
