package modules

import (
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"
)

var bannerPage = template.Must(template.New("banner").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8" />
<meta name="viewport" content="width=device-width, initial-scale=1.0" />
<title>{{.}}</title>
<style>
body{margin:0;font-family:sans-serif;display:flex;align-items:center;justify-content:center;height:100vh;background:linear-gradient(to bottom,#001f3f,#003366);color:#fff}
.box{text-align:center;background:rgba(255,255,255,.05);padding:40px;border-radius:15px}
h1{color:#00d4ff}
p{color:#87cefa}
</style>
</head>
<body>
<div class="box">
<h1>Welcome to {{.}}</h1>
<p>The backend is running successfully.</p>
</div>
</body>
</html>
`))

// BannerModule serves the landing page at /.
type BannerModule struct {
	Company string
}

func NewBannerModule(company string) *BannerModule { return &BannerModule{Company: company} }

func (m *BannerModule) Register(rg *gin.RouterGroup) {
	rg.GET("/", func(c *gin.Context) {
		c.Status(http.StatusOK)
		c.Header("Content-Type", "text/html; charset=utf-8")
		_ = bannerPage.Execute(c.Writer, m.Company)
	})
}
