package plugin

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"regexp"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/onsi/gomega/ghttp"

	"github.com/zombor/deck-translate/internal/capture"
)

// routeAll sends every request to h, however many arrive
func routeAll(s *ghttp.Server, h http.Handler) {
	for _, method := range []string{"GET", "POST", "PUT", "OPTIONS"} {
		s.RouteToHandler(method, regexp.MustCompile(`.*`), h.ServeHTTP)
	}
}

var _ = Describe("Server", func() {
	var (
		db          *mockDB
		capturer    *mockCapturer
		translator  *mockTranslator
		server      *Server
		auth        BasicAuth
		ghttpServer *ghttp.Server
	)

	setupServer := func() {
		if ghttpServer != nil {
			ghttpServer.Close()
		}
		server = NewServerWithMux(NewService(capturer, translator, db), auth, http.NewServeMux())
		ghttpServer = ghttp.NewServer()
		routeAll(ghttpServer, server)
	}

	do := func(method, path string, body any) *http.Response {
		var reader io.Reader
		if body != nil {
			data, err := json.Marshal(body)
			Expect(err).NotTo(HaveOccurred())
			reader = bytes.NewReader(data)
		}
		req, err := http.NewRequest(method, ghttpServer.URL()+path, reader)
		Expect(err).NotTo(HaveOccurred())
		req.Header.Set("Content-Type", "application/json")
		resp, err := http.DefaultClient.Do(req)
		Expect(err).NotTo(HaveOccurred())
		return resp
	}

	decode := func(resp *http.Response, v any) {
		defer resp.Body.Close()
		body, err := io.ReadAll(resp.Body)
		Expect(err).NotTo(HaveOccurred())
		Expect(json.Unmarshal(body, v)).To(Succeed())
	}

	BeforeEach(func() {
		db = newMockDB()
		capturer = newMockCapturer()
		translator = newMockTranslator()
		auth = BasicAuth{}
		setupServer()
	})

	AfterEach(func() {
		if ghttpServer != nil {
			ghttpServer.Close()
		}
	})

	Describe("handleHealth", func() {
		It("should report ok", func() {
			resp := do("GET", "/healthz", nil)
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			var body map[string]string
			decode(resp, &body)
			Expect(body).To(HaveKeyWithValue("status", "ok"))
		})
	})

	Describe("handleScreenshot", func() {
		When("capture succeeds", func() {
			It("should return status OK", func() {
				resp := do("POST", "/api/screenshot", nil)
				Expect(resp.StatusCode).To(Equal(http.StatusOK))
				resp.Body.Close()
			})

			It("should return success, image and text keys", func() {
				resp := do("POST", "/api/screenshot", nil)
				var body map[string]any
				decode(resp, &body)
				Expect(body).To(HaveKeyWithValue("success", true))
				Expect(body).To(HaveKeyWithValue("image", "aW1n"))
				Expect(body).To(HaveKeyWithValue("text", "Hello"))
				Expect(body).NotTo(HaveKey("error"))
				Expect(body).NotTo(HaveKey("ocr_error"))
			})

			It("should set Content-Type to application/json", func() {
				resp := do("POST", "/api/screenshot", nil)
				defer resp.Body.Close()
				Expect(resp.Header.Get("Content-Type")).To(Equal("application/json"))
			})
		})

		When("capture fails", func() {
			BeforeEach(func() {
				capturer.result = capture.Failure("failed to capture screenshot")
				setupServer()
			})

			It("should still return status OK with the error", func() {
				resp := do("POST", "/api/screenshot", nil)
				Expect(resp.StatusCode).To(Equal(http.StatusOK))
				var body map[string]any
				decode(resp, &body)
				Expect(body).To(HaveKeyWithValue("success", false))
				Expect(body).To(HaveKeyWithValue("error", "failed to capture screenshot"))
				Expect(body).NotTo(HaveKey("image"))
				Expect(body).NotTo(HaveKey("text"))
			})
		})

		When("request method is not POST", func() {
			It("should return status Method Not Allowed", func() {
				resp := do("GET", "/api/screenshot", nil)
				Expect(resp.StatusCode).To(Equal(http.StatusMethodNotAllowed))
				resp.Body.Close()
			})
		})
	})

	Describe("handleTranslate", func() {
		When("the body is valid", func() {
			It("should return the translation", func() {
				resp := do("POST", "/api/translate", map[string]string{
					"text":        "Hello",
					"source_lang": "en",
					"target_lang": "fr",
				})
				Expect(resp.StatusCode).To(Equal(http.StatusOK))
				var body map[string]string
				decode(resp, &body)
				Expect(body).To(HaveKeyWithValue("translation", "Bonjour"))
			})

			It("should pass the languages to the translator", func() {
				resp := do("POST", "/api/translate", map[string]string{
					"text":        "Hello",
					"source_lang": "en",
					"target_lang": "fr",
				})
				resp.Body.Close()
				Expect(translator.requests).To(HaveLen(1))
				Expect(translator.requests[0].Target).To(Equal("fr"))
			})
		})

		When("the body is malformed", func() {
			It("should return status Bad Request", func() {
				req, err := http.NewRequest("POST", ghttpServer.URL()+"/api/translate", bytes.NewBufferString("{"))
				Expect(err).NotTo(HaveOccurred())
				resp, err := http.DefaultClient.Do(req)
				Expect(err).NotTo(HaveOccurred())
				Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
				resp.Body.Close()
				Expect(translator.requests).To(BeEmpty())
			})
		})
	})

	Describe("handleGetSettings", func() {
		When("settings are stored", func() {
			BeforeEach(func() {
				db.settings = &Settings{SourceLang: "ko", TargetLang: "en"}
			})

			It("should return them", func() {
				resp := do("GET", "/api/settings", nil)
				Expect(resp.StatusCode).To(Equal(http.StatusOK))
				var settings Settings
				decode(resp, &settings)
				Expect(settings).To(Equal(Settings{SourceLang: "ko", TargetLang: "en"}))
			})
		})
	})

	Describe("handleSaveSettings", func() {
		When("the languages are supported", func() {
			It("should store them", func() {
				resp := do("PUT", "/api/settings", Settings{SourceLang: "zh", TargetLang: "en"})
				Expect(resp.StatusCode).To(Equal(http.StatusOK))
				resp.Body.Close()
				Expect(db.settings).To(Equal(&Settings{SourceLang: "zh", TargetLang: "en"}))
			})
		})

		When("a language is unsupported", func() {
			It("should return status Bad Request", func() {
				resp := do("PUT", "/api/settings", Settings{SourceLang: "en", TargetLang: "klingon"})
				Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
				var body map[string]string
				decode(resp, &body)
				Expect(body["error"]).To(ContainSubstring("klingon"))
			})
		})

		When("the database fails", func() {
			BeforeEach(func() {
				db.saveErr = errors.New("disk full")
			})

			It("should return status Internal Server Error", func() {
				resp := do("PUT", "/api/settings", Settings{SourceLang: "zh", TargetLang: "en"})
				Expect(resp.StatusCode).To(Equal(http.StatusInternalServerError))
				var body map[string]string
				decode(resp, &body)
				Expect(body["error"]).NotTo(ContainSubstring("disk full"))
			})
		})
	})

	Describe("handleLanguages", func() {
		It("should list the supported languages", func() {
			resp := do("GET", "/api/languages", nil)
			var langs []Language
			decode(resp, &langs)
			Expect(langs).To(HaveLen(9))
		})
	})

	Describe("CORS", func() {
		It("should answer preflight requests", func() {
			req, err := http.NewRequest("OPTIONS", ghttpServer.URL()+"/api/translate", nil)
			Expect(err).NotTo(HaveOccurred())
			req.Header.Set("Origin", "https://steamloopback.host")
			req.Header.Set("Access-Control-Request-Method", "POST")
			resp, err := http.DefaultClient.Do(req)
			Expect(err).NotTo(HaveOccurred())
			defer resp.Body.Close()
			Expect(resp.Header.Get("Access-Control-Allow-Origin")).To(Equal("*"))
		})
	})

	Describe("basic auth", func() {
		BeforeEach(func() {
			auth = BasicAuth{Username: "deck", Password: "steam"}
			setupServer()
		})

		When("credentials are missing", func() {
			It("should return status Unauthorized", func() {
				resp := do("POST", "/api/screenshot", nil)
				Expect(resp.StatusCode).To(Equal(http.StatusUnauthorized))
				resp.Body.Close()
				Expect(capturer.calls).To(BeZero())
			})
		})

		When("credentials are correct", func() {
			It("should allow the request", func() {
				req, err := http.NewRequest("POST", ghttpServer.URL()+"/api/screenshot", nil)
				Expect(err).NotTo(HaveOccurred())
				req.Header.Set("Authorization", "Basic "+base64.StdEncoding.EncodeToString([]byte("deck:steam")))
				resp, err := http.DefaultClient.Do(req)
				Expect(err).NotTo(HaveOccurred())
				Expect(resp.StatusCode).To(Equal(http.StatusOK))
				resp.Body.Close()
			})
		})

		When("credentials are wrong", func() {
			It("should return status Unauthorized", func() {
				req, err := http.NewRequest("POST", ghttpServer.URL()+"/api/screenshot", nil)
				Expect(err).NotTo(HaveOccurred())
				req.SetBasicAuth("deck", "wrong")
				resp, err := http.DefaultClient.Do(req)
				Expect(err).NotTo(HaveOccurred())
				Expect(resp.StatusCode).To(Equal(http.StatusUnauthorized))
				resp.Body.Close()
			})
		})

		When("hitting the health check", func() {
			It("should not require credentials", func() {
				resp := do("GET", "/healthz", nil)
				Expect(resp.StatusCode).To(Equal(http.StatusOK))
				resp.Body.Close()
			})
		})
	})
})
