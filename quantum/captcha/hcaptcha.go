package captcha

const (
	HcaptchaClientAPI = "https://hcaptcha.com/1/api.js"
	HcaptchaVerifyURL = "https://hcaptcha.com/siteverify"
)

func NewHcaptcha(cfg Config, opts ...Option) *Adapter {
	return newAdapter(cfg, "h-captcha", HcaptchaClientAPI, HcaptchaVerifyURL, opts...)
}
