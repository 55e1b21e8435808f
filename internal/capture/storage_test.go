package capture

import (
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("LocalStorage", func() {
	var (
		tmpDir  string
		storage Storage
	)

	BeforeEach(func() {
		tmpDir = GinkgoT().TempDir()
		var err error
		storage, err = NewLocalStorage(filepath.Join(tmpDir, "tmp"))
		Expect(err).NotTo(HaveOccurred())
	})

	Describe("NewLocalStorage", func() {
		It("should create the base directory", func() {
			Expect(filepath.Join(tmpDir, "tmp")).To(BeADirectory())
		})
	})

	Describe("Save", func() {
		var (
			savedPath string
			err       error
		)

		JustBeforeEach(func() {
			savedPath, err = storage.Save("shot.png", []byte("first"))
		})

		It("should not return an error", func() {
			Expect(err).NotTo(HaveOccurred())
		})

		It("should return the full path", func() {
			Expect(savedPath).To(Equal(filepath.Join(tmpDir, "tmp", "shot.png")))
			Expect(savedPath).To(BeAnExistingFile())
		})

		When("the file already exists", func() {
			It("should overwrite it", func() {
				_, err := storage.Save("shot.png", []byte("second"))
				Expect(err).NotTo(HaveOccurred())
				data, err := storage.Get("shot.png")
				Expect(err).NotTo(HaveOccurred())
				Expect(string(data)).To(Equal("second"))
			})
		})
	})

	Describe("Get", func() {
		When("the file exists", func() {
			BeforeEach(func() {
				_, err := storage.Save("shot.png", []byte("pixels"))
				Expect(err).NotTo(HaveOccurred())
			})

			It("should return its content", func() {
				data, err := storage.Get("shot.png")
				Expect(err).NotTo(HaveOccurred())
				Expect(string(data)).To(Equal("pixels"))
			})
		})

		When("the file does not exist", func() {
			It("returns the error", func() {
				_, err := storage.Get("missing.png")
				Expect(err).To(HaveOccurred())
			})
		})
	})

	Describe("Delete", func() {
		When("the file exists", func() {
			BeforeEach(func() {
				_, err := storage.Save("shot.png", []byte("pixels"))
				Expect(err).NotTo(HaveOccurred())
			})

			It("should remove it", func() {
				Expect(storage.Delete("shot.png")).To(Succeed())
				Expect(filepath.Join(tmpDir, "tmp", "shot.png")).NotTo(BeAnExistingFile())
			})
		})

		When("the file does not exist", func() {
			It("returns the error", func() {
				Expect(storage.Delete("missing.png")).NotTo(Succeed())
			})
		})
	})
})
