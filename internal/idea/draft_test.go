package idea

import (
	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
)

var _ = ginkgo.Describe("Draft", func() {
	var d *Draft

	ginkgo.BeforeEach(func() {
		d = &Draft{}
	})

	ginkgo.Describe("AddFiles", func() {
		ginkgo.It("should accept files at or under the size bound", func() {
			notices := d.AddFiles([]Attachment{
				{Filename: "deck.pdf", MediaType: "application/pdf", Size: 50 * 1024 * 1024},
				{Filename: "exact.bin", Size: MaxAttachmentSize},
			})

			gomega.Expect(notices).To(gomega.BeEmpty())
			gomega.Expect(d.Files).To(gomega.HaveLen(2))
		})

		ginkgo.It("should reject each oversized file with its own notice", func() {
			notices := d.AddFiles([]Attachment{
				{Filename: "huge.mov", Size: 101 * 1024 * 1024},
			})

			gomega.Expect(notices).To(gomega.HaveLen(1))
			gomega.Expect(notices[0].Message).To(gomega.Equal("File huge.mov is too large. Maximum size is 100MB"))
			gomega.Expect(d.Files).To(gomega.BeEmpty())
		})

		ginkgo.It("should keep accepted files in selection order around rejections", func() {
			notices := d.AddFiles([]Attachment{
				{Filename: "a.png", MediaType: "image/png", Size: 100},
				{Filename: "big.mov", Size: MaxAttachmentSize + 1},
				{Filename: "b.pdf", MediaType: "application/pdf", Size: 200},
			})

			gomega.Expect(notices).To(gomega.HaveLen(1))
			gomega.Expect(d.Files).To(gomega.HaveLen(2))
			gomega.Expect(d.Files[0].Filename).To(gomega.Equal("a.png"))
			gomega.Expect(d.Files[1].Filename).To(gomega.Equal("b.pdf"))
		})
	})

	ginkgo.Describe("RemoveFile", func() {
		ginkgo.BeforeEach(func() {
			d.Files = []Attachment{
				{Filename: "a"},
				{Filename: "b"},
				{Filename: "c"},
			}
		})

		ginkgo.It("should remove by index and preserve the others' order", func() {
			gomega.Expect(d.RemoveFile(1)).To(gomega.Succeed())

			gomega.Expect(d.Files).To(gomega.HaveLen(2))
			gomega.Expect(d.Files[0].Filename).To(gomega.Equal("a"))
			gomega.Expect(d.Files[1].Filename).To(gomega.Equal("c"))
		})

		ginkgo.It("should reject out-of-range indexes", func() {
			gomega.Expect(d.RemoveFile(-1)).ToNot(gomega.Succeed())
			gomega.Expect(d.RemoveFile(3)).ToNot(gomega.Succeed())
			gomega.Expect(d.Files).To(gomega.HaveLen(3))
		})
	})

	ginkgo.Describe("completion predicates", func() {
		ginkgo.It("should trim whitespace before deciding", func() {
			d.Title = "  "
			d.Description = "\n"

			gomega.Expect(d.TitleComplete()).To(gomega.BeFalse())
			gomega.Expect(d.DescriptionComplete()).To(gomega.BeFalse())

			d.Title = " x "
			d.Description = "y"

			gomega.Expect(d.TitleComplete()).To(gomega.BeTrue())
			gomega.Expect(d.DescriptionComplete()).To(gomega.BeTrue())
		})
	})
})

var _ = ginkgo.Describe("FileKind", func() {
	ginkgo.DescribeTable("KindOf",
		func(mediaType string, expected FileKind) {
			gomega.Expect(KindOf(mediaType)).To(gomega.Equal(expected))
		},
		ginkgo.Entry("png image", "image/png", KindImage),
		ginkgo.Entry("webp image", "image/webp", KindImage),
		ginkgo.Entry("mp4 video", "video/mp4", KindVideo),
		ginkgo.Entry("pdf", "application/pdf", KindPDF),
		ginkgo.Entry("legacy word", "application/msword", KindDoc),
		ginkgo.Entry("docx", "application/vnd.openxmlformats-officedocument.wordprocessingml.document", KindDoc),
		ginkgo.Entry("legacy excel", "application/vnd.ms-excel", KindSheet),
		ginkgo.Entry("xlsx", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", KindSheet),
		ginkgo.Entry("legacy powerpoint", "application/vnd.ms-powerpoint", KindSlides),
		ginkgo.Entry("pptx", "application/vnd.openxmlformats-officedocument.presentationml.presentation", KindSlides),
		ginkgo.Entry("plain text", "text/plain", KindText),
		ginkgo.Entry("unknown type", "application/zip", KindDefault),
		ginkgo.Entry("empty type", "", KindDefault),
	)

	ginkgo.DescribeTable("DisplayLabel",
		func(mediaType, expected string) {
			gomega.Expect(DisplayLabel(mediaType)).To(gomega.Equal(expected))
		},
		ginkgo.Entry("image", "image/png", "IMAGE"),
		ginkgo.Entry("pdf", "application/pdf", "PDF"),
		ginkgo.Entry("unknown with subtype", "application/zip", "ZIP"),
		ginkgo.Entry("no subtype", "", "FILE"),
	)
})
