package route

import "github.com/edufiliova/navigator/model"

// Entry is a single path/state pair in the static tables.
type Entry struct {
	Path  string
	State model.PageState
}

// forwardEntries maps clean shareable paths to states. "/" and "/app" are
// resolved by the home fallback and are deliberately absent so that the
// query form "/?page=" is reachable.
var forwardEntries = []Entry{
	{"/blog", model.StateBlog},
	{"/about", model.StateAbout},
	{"/contact", model.StateContact},
	{"/help", model.StateHelp},
	{"/premium", model.StatePremium},
	{"/terms", model.StateTerms},
	{"/privacy", model.StatePrivacy},
	{"/privacy-policy", model.StatePrivacyPolicy},
	{"/cookies-policy", model.StateCookiesPolicy},
	{"/refund-policy", model.StateRefundPolicy},
	{"/student-terms", model.StateStudentTerms},
	{"/teacher-terms", model.StateTeacherTerms},
	{"/school-terms", model.StateSchoolTerms},
	{"/chat-terms", model.StateChatTerms},
	{"/whatsapp-policy", model.StateWhatsAppPolicy},
	{"/data-retention", model.StateDataRetention},
	{"/copyright-dmca", model.StateCopyrightDMCA},
	{"/community-guidelines", model.StateCommunityGuidelines},
	{"/payment-billing", model.StatePaymentBilling},
	{"/payout-policy", model.StatePayoutPolicy},
	{"/learn-more", model.StateLearnMore},
	{"/subscribe", model.StateSubscribe},
	{"/login", model.StateAuth},
	{"/signup", model.StateAuth},
	{"/teacher-login", model.StateTeacherLogin},
	{"/teacher-signup", model.StateTeacherSignup},
	{"/teacher-signup-basic", model.StateTeacherSignupBasic},
	{"/teacher-verify-email", model.StateTeacherVerifyEmail},
	{"/teacher-application-status", model.StateTeacherApplicationStatus},
	{"/freelancer-login", model.StateFreelancerLogin},
	{"/freelancer-signup", model.StateFreelancerSignup},
	{"/freelancer-signup-basic", model.StateFreelancerSignupBasic},
	{"/freelancer-application-status", model.StateFreelancerApplicationStatus},
	{"/courses", model.StateCourseBrowse},
	{"/portfolio", model.StatePortfolioGallery},
	{"/find-talent", model.StateCommunity},
	{"/shop", model.StateProductShop},
	{"/cart", model.StateCart},
	{"/advertise", model.StateAdvertiseWithUs},
	{"/become-teacher", model.StateBecomeTeacher},
	{"/buy-voucher", model.StateBuyVoucher},
	{"/verify-certificate", model.StateVerifyCertificate},
	{"/my-certificates", model.StateMyCertificates},
	{"/customer-pricing", model.StateCustomerPricing},
	{"/creator-pricing", model.StateCreatorPricing},
	{"/education-pricing", model.StateEducationPricing},
	{"/teacher-pricing", model.StateTeacherPricing},
	{"/404", model.StateNotFound},
	{"/403", model.StateAccessDenied},
	{"/apply/teacher", model.StateTeacherSignupBasic},
	{"/apply/freelancer", model.StateFreelancerSignupBasic},
	{"/checkout/voucher", model.StateBuyVoucher},
	{"/checkout/membership", model.StateSubscribe},
}

// reverseEntries maps states to their canonical clean path. Aliases such as
// /signup or /apply/teacher are forward-only.
var reverseEntries = []Entry{
	{"/", model.StateHome},
	{"/blog", model.StateBlog},
	{"/about", model.StateAbout},
	{"/contact", model.StateContact},
	{"/help", model.StateHelp},
	{"/premium", model.StatePremium},
	{"/terms", model.StateTerms},
	{"/privacy", model.StatePrivacy},
	{"/privacy-policy", model.StatePrivacyPolicy},
	{"/cookies-policy", model.StateCookiesPolicy},
	{"/refund-policy", model.StateRefundPolicy},
	{"/student-terms", model.StateStudentTerms},
	{"/teacher-terms", model.StateTeacherTerms},
	{"/school-terms", model.StateSchoolTerms},
	{"/chat-terms", model.StateChatTerms},
	{"/whatsapp-policy", model.StateWhatsAppPolicy},
	{"/data-retention", model.StateDataRetention},
	{"/copyright-dmca", model.StateCopyrightDMCA},
	{"/community-guidelines", model.StateCommunityGuidelines},
	{"/payment-billing", model.StatePaymentBilling},
	{"/payout-policy", model.StatePayoutPolicy},
	{"/learn-more", model.StateLearnMore},
	{"/subscribe", model.StateSubscribe},
	{"/login", model.StateAuth},
	{"/teacher-login", model.StateTeacherLogin},
	{"/teacher-signup", model.StateTeacherSignup},
	{"/teacher-signup-basic", model.StateTeacherSignupBasic},
	{"/teacher-verify-email", model.StateTeacherVerifyEmail},
	{"/teacher-application-status", model.StateTeacherApplicationStatus},
	{"/freelancer-login", model.StateFreelancerLogin},
	{"/freelancer-signup", model.StateFreelancerSignup},
	{"/freelancer-signup-basic", model.StateFreelancerSignupBasic},
	{"/freelancer-application-status", model.StateFreelancerApplicationStatus},
	{"/courses", model.StateCourseBrowse},
	{"/portfolio", model.StatePortfolioGallery},
	{"/find-talent", model.StateCommunity},
	{"/shop", model.StateProductShop},
	{"/cart", model.StateCart},
	{"/advertise", model.StateAdvertiseWithUs},
	{"/become-teacher", model.StateBecomeTeacher},
	{"/buy-voucher", model.StateBuyVoucher},
	{"/verify-certificate", model.StateVerifyCertificate},
	{"/my-certificates", model.StateMyCertificates},
	{"/customer-pricing", model.StateCustomerPricing},
	{"/creator-pricing", model.StateCreatorPricing},
	{"/education-pricing", model.StateEducationPricing},
	{"/teacher-pricing", model.StateTeacherPricing},
	{"/404", model.StateNotFound},
	{"/403", model.StateAccessDenied},
}

// queryAliases are ?page= values that are not state names themselves.
// Any other known state name is accepted verbatim.
var queryAliases = map[string]model.PageState{
	"login":  model.StateAuth,
	"signup": model.StateAuth,
}

// builtinMatchers lists the dynamic matchers in priority order.
var builtinMatchers = []DynamicMatcher{
	{State: model.StateBlogPostDetail, Prefix: "/blog/", AuxKey: "slug"},
	{State: model.StateCourseDetail, Prefix: "/course/", AuxKey: "courseId"},
	{State: model.StateCoursePlayer, Prefix: "/course-player/", AuxKey: "courseId"},
	{State: model.StateProductDetail, Prefix: "/product/", AuxKey: "productId"},
	{State: model.StatePortfolioPreview, Prefix: "/portfolio/", AuxKey: "workId"},
	{State: model.StateFreelancerProfile, Prefix: "/freelancer/", AuxKey: "freelancerId"},
	{State: model.StateMeetingRoom, Prefix: "/meeting-room/", AuxKey: "meetingId"},
	{State: model.StateTeacherMeetingDetail, Prefix: "/teacher-meeting-detail/", AuxKey: "meetingId"},
	{State: model.StateClaimCertificate, Prefix: "/claim-certificate/", AuxKey: "courseId"},
	{State: model.StateVerifyCertificate, Prefix: "/verify-certificate/", AuxKey: "code"},
}

// QueryAuxKeys are the auxiliary keys carried through the query form.
var QueryAuxKeys = []string{
	"applicationId",
	"categoryId",
	"code",
	"courseId",
	"productId",
	"tab",
	"workId",
}
